package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/zhouzirui/moodi/backend/internal/client"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
)

// 宽屏布局下回复的缩进
const bubbleIndent = 2

// terminalRenderer 把组件状态打印到终端
type terminalRenderer struct {
	mu  sync.Mutex
	out io.Writer

	reply   string
	pending bool

	bubble  *color.Color
	face    *color.Color
	warning *color.Color
	dim     *color.Color
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{
		out:     out,
		bubble:  color.New(color.FgGreen),
		face:    color.New(color.FgMagenta, color.Bold),
		warning: color.New(color.FgRed),
		dim:     color.New(color.Faint, color.Italic),
	}
}

func (r *terminalRenderer) Prompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, "> ")
}

func (r *terminalRenderer) FadeExpression(from, to expression.Label, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.face.Fprintf(r.out, "[%s → %s]\n", from, to)
}

func (r *terminalRenderer) ShowLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reply = ""
	r.pending = false
	r.dim.Fprintln(r.out, "MOODi is thinking...")
}

// ShowReply 只记录回复，定位后再输出
func (r *terminalRenderer) ShowReply(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reply = text
	r.pending = true
}

func (r *terminalRenderer) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reply = ""
	r.pending = false
}

// BubbleHeight 以终端行数衡量回复高度
func (r *terminalRenderer) BubbleHeight() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(strings.Count(r.reply, "\n") + 1)
}

// PositionBubble 输出待显示的回复：窄屏顺排，宽屏缩进并带箭头
func (r *terminalRenderer) PositionBubble(p client.Placement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pending {
		return
	}
	r.pending = false

	if p.Flow {
		r.bubble.Fprintf(r.out, "MOODi: %s\n", r.reply)
		return
	}
	r.bubble.Fprintf(r.out, "%s◀ MOODi: %s\n", strings.Repeat(" ", bubbleIndent), r.reply)
}

func (r *terminalRenderer) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warning.Fprintln(r.out, message)
}

func (r *terminalRenderer) HideError() {}

func (r *terminalRenderer) ClearInput() {}

func (r *terminalRenderer) SetNewConversationVisible(visible bool) {
	if !visible {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dim.Fprintln(r.out, "(type /new to start a new conversation)")
}

func (r *terminalRenderer) ShowPlayControl() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dim.Fprintln(r.out, "(type /play to hear the reply)")
}
