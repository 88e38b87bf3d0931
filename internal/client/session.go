package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
)

// 对用户展示的固定文案
const (
	EmptyInputMessage       = "Please enter some text before sending."
	CompletionFailedMessage = "Error: Unable to retrieve response."
	ModerationFailedMessage = "Error: Unable to check message."
	ConnectionFailedMessage = "Error: Unable to connect to server."

	NoResponse         = "No response."
	InappropriateReply = "Uh-oh, that's inappropriate! I cannot assist with inappropriate requests."
	GibberishReply     = "Whoa, did a cat walk over your keyboard? Could you rephrase that?"
)

var (
	// ErrEmptyInput is returned by Submit for blank input.
	ErrEmptyInput = errors.New("empty input")
	// ErrTurnInFlight is returned when a turn is still running.
	ErrTurnInFlight = errors.New("a turn is already in progress")
)

// State is the position of a Session in the per-turn pipeline.
type State int

const (
	StateIdle State = iota
	StateSending
	StateAwaitingCompletion
	StateAwaitingModeration
	StateAwaitingExpression
	StateFlagged
	StateRendered
	StateAwaitingAudio
	StatePlayable
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateSending:            "sending",
	StateAwaitingCompletion: "awaiting-completion",
	StateAwaitingModeration: "awaiting-moderation",
	StateAwaitingExpression: "awaiting-expression",
	StateFlagged:            "flagged",
	StateRendered:           "rendered",
	StateAwaitingAudio:      "awaiting-audio",
	StatePlayable:           "playable",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Renderer draws the widget. Calls come from the goroutine running Submit,
// Reset or Resize.
type Renderer interface {
	Fader

	ShowLoading()
	ShowReply(text string)
	ClearOutput()
	// BubbleHeight measures the bubble currently shown.
	BubbleHeight() float64
	PositionBubble(p Placement)

	ShowError(message string)
	HideError()
	ClearInput()
	SetNewConversationVisible(visible bool)
	// ShowPlayControl arms the play control of the rendered reply.
	ShowPlayControl()
}

// Option customises a Session.
type Option func(*Session)

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) Option {
	return func(s *Session) {
		s.viewport = v
	}
}

// Session is one conversation client: it owns the conversation, the turn
// state, the audio deck and the expression view. Only one turn runs at a time.
type Session struct {
	api      API
	renderer Renderer
	deck     *Deck
	view     *ExpressionView

	mu       sync.Mutex
	state    State
	busy     bool
	conv     chat.Conversation
	viewport Viewport
	bubble   bool
	audio    *Audio
}

// NewSession wires a session. player may be nil, in which case audio is
// fetched but Play fails.
func NewSession(api API, renderer Renderer, player Player, opts ...Option) *Session {
	s := &Session{
		api:      api,
		renderer: renderer,
		deck:     NewDeck(player),
		view:     NewExpressionView(renderer),
		viewport: Viewport{Width: 1280, Height: 800},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one full turn for input. Completion and moderation failures
// abort the turn and are returned; expression and speech failures degrade
// to the default expression and a reply without audio.
func (s *Session) Submit(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		s.renderer.ShowError(EmptyInputMessage)
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.busy = true
	s.state = StateSending
	s.conv = append(s.conv, chat.Message{Role: chat.RoleUser, Content: text})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	turnID := uuid.NewString()
	log.Printf("[client] turn %s started", turnID)

	s.renderer.HideError()
	s.renderer.ShowLoading()
	s.setBubble(true)
	s.placeBubble()
	s.renderer.ClearInput()

	reply, err := s.api.Complete(ctx, s.snapshot(StateAwaitingCompletion))
	if err != nil {
		s.fail(turnID, err, CompletionFailedMessage)
		return fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = NoResponse
	}

	s.mu.Lock()
	s.conv = append(s.conv, chat.Message{Role: chat.RoleAssistant, Content: reply})
	s.mu.Unlock()

	status, err := s.api.Moderate(ctx, s.snapshot(StateAwaitingModeration))
	if err != nil {
		s.fail(turnID, err, ModerationFailedMessage)
		return fmt.Errorf("moderate: %w", err)
	}

	var label expression.Label
	switch moderation.Normalize(string(status)) {
	case moderation.Inappropriate:
		reply, label = InappropriateReply, expression.Error
		s.overrideReply(reply)
	case moderation.Gibberish:
		reply, label = GibberishReply, expression.Error
		s.overrideReply(reply)
	default:
		label = s.classify(ctx, turnID)
	}

	s.setState(StateRendered)
	s.renderer.ShowReply(reply)
	s.placeBubble()
	s.view.Show(label)
	if len(s.Conversation()) > 1 {
		s.renderer.SetNewConversationVisible(true)
	}

	s.setState(StateAwaitingAudio)
	audio, err := s.api.SynthesizeSpeech(ctx, reply)
	if err != nil || len(audio) == 0 {
		log.Printf("[client] turn %s: no audio for reply: %v", turnID, err)
		s.setState(StateRendered)
		return nil
	}

	s.mu.Lock()
	s.audio = s.deck.Load(audio)
	s.state = StatePlayable
	s.mu.Unlock()
	s.renderer.ShowPlayControl()

	log.Printf("[client] turn %s rendered with expression %s", turnID, label)
	return nil
}

// Play plays the audio of the rendered reply, stopping any other playback first.
func (s *Session) Play() error {
	s.mu.Lock()
	audio := s.audio
	s.mu.Unlock()

	if audio == nil {
		return ErrNoAudio
	}
	return s.deck.Play(audio)
}

// Reset starts a new conversation. It is rejected while a turn is running.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.conv = nil
	s.audio = nil
	s.bubble = false
	s.state = StateIdle
	s.mu.Unlock()

	s.deck.Stop()
	s.renderer.ClearOutput()
	s.renderer.ClearInput()
	s.renderer.SetNewConversationVisible(false)
	s.view.Show(expression.Default)
	s.renderer.HideError()
	return nil
}

// Resize records the new viewport and repositions the shown bubble.
func (s *Session) Resize(v Viewport) {
	s.mu.Lock()
	s.viewport = v
	shown := s.bubble
	s.mu.Unlock()

	if shown {
		s.placeBubble()
	}
}

// InputLayout sizes the text input for the current viewport.
func (s *Session) InputLayout(containerTop, contentHeight float64) InputLayout {
	s.mu.Lock()
	v := s.viewport
	s.mu.Unlock()
	return LayoutInput(v, containerTop, contentHeight)
}

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns a copy of the message history.
func (s *Session) Conversation() chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Clone()
}

// Expression returns the displayed expression.
func (s *Session) Expression() expression.Label {
	return s.view.Current()
}

// Audio returns the audio of the rendered reply, or nil.
func (s *Session) Audio() *Audio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

// classify 失败或返回未知表情时使用默认表情，不中断本轮
func (s *Session) classify(ctx context.Context, turnID string) expression.Label {
	label, err := s.api.ClassifyExpression(ctx, s.snapshot(StateAwaitingExpression))
	if err != nil {
		log.Printf("[client] turn %s: expression failed, using %s: %v", turnID, expression.Default, err)
		return expression.Default
	}
	if !label.Valid() {
		log.Printf("[client] turn %s: unknown expression %q, using %s", turnID, label, expression.Default)
		return expression.Default
	}
	return label
}

// overrideReply 用固定回复替换最后一条助手消息
func (s *Session) overrideReply(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFlagged
	if n := len(s.conv); n > 0 {
		s.conv[n-1].Content = reply
	}
}

// fail 终止本轮：错误提示替换加载气泡，已追加的消息保留
func (s *Session) fail(turnID string, err error, message string) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		message = ConnectionFailedMessage
	}
	log.Printf("[client] turn %s failed: %v", turnID, err)

	s.mu.Lock()
	s.state = StateIdle
	s.bubble = false
	s.mu.Unlock()

	s.renderer.ClearOutput()
	s.renderer.ShowError(message)
}

func (s *Session) snapshot(next State) chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	return s.conv.Clone()
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

func (s *Session) setBubble(shown bool) {
	s.mu.Lock()
	s.bubble = shown
	s.mu.Unlock()
}

func (s *Session) placeBubble() {
	s.mu.Lock()
	v := s.viewport
	s.mu.Unlock()
	s.renderer.PositionBubble(PlaceBubble(v, s.renderer.BubbleHeight()))
}
