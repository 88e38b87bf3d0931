package client

// 气泡与输入框布局常量，单位为像素
const (
	MobileBreakpoint    = 768
	ArrowViewportRatio  = 0.4
	MinBubbleTop        = 50
	InputReservedHeight = 160
)

// Viewport is the visible area the widget is laid out in.
type Viewport struct {
	Width  float64
	Height float64
}

// Mobile reports whether the viewport uses the flow layout.
func (v Viewport) Mobile() bool {
	return v.Width <= MobileBreakpoint
}

// Placement positions the reply bubble. With Flow set the bubble follows the
// document flow and Top/ArrowTop are unused.
type Placement struct {
	Flow     bool
	Top      float64
	ArrowTop float64 // relative to the bubble top
}

// PlaceBubble anchors the bubble arrow at 40% of the viewport height and
// keeps the bubble top at or below MinBubbleTop.
func PlaceBubble(v Viewport, bubbleHeight float64) Placement {
	if v.Mobile() {
		return Placement{Flow: true}
	}

	arrow := v.Height * ArrowViewportRatio
	top := arrow - bubbleHeight/2
	if top < MinBubbleTop {
		top = MinBubbleTop
	}
	return Placement{Top: top, ArrowTop: arrow - top}
}

// InputLayout is the computed size of the text input.
type InputLayout struct {
	Height float64
	Scroll bool
}

// LayoutInput grows the input with its content until it reaches the space
// left below containerTop; taller content is clamped and scrolls.
func LayoutInput(v Viewport, containerTop, contentHeight float64) InputLayout {
	available := v.Height - InputReservedHeight - containerTop
	if available < 0 {
		available = 0
	}
	if contentHeight > available {
		return InputLayout{Height: available, Scroll: true}
	}
	return InputLayout{Height: contentHeight}
}
