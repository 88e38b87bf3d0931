package client

import (
	"sync"
	"time"

	"github.com/zhouzirui/moodi/backend/internal/model/expression"
)

// FadeDuration is the cross-fade time between two expression images.
const FadeDuration = time.Second

// Fader draws the transition between two expression images.
type Fader interface {
	FadeExpression(from, to expression.Label, d time.Duration)
}

// ExpressionView tracks the displayed expression image.
type ExpressionView struct {
	mu      sync.Mutex
	current expression.Label
	fader   Fader
}

// NewExpressionView starts on the default expression.
func NewExpressionView(fader Fader) *ExpressionView {
	return &ExpressionView{current: expression.Default, fader: fader}
}

// Show cross-fades to label. It returns false without drawing anything when
// label is already displayed.
func (v *ExpressionView) Show(label expression.Label) bool {
	v.mu.Lock()
	if v.current == label {
		v.mu.Unlock()
		return false
	}
	from := v.current
	v.current = label
	v.mu.Unlock()

	if v.fader != nil {
		v.fader.FadeExpression(from, label, FadeDuration)
	}
	return true
}

// Current returns the displayed expression.
func (v *ExpressionView) Current() expression.Label {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}
