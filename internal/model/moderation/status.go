package moderation

import "strings"

// Status is the verdict for the latest user message.
type Status string

const (
	Appropriate   Status = "appropriate"
	Inappropriate Status = "inappropriate"
	Gibberish     Status = "gibberish"
)

// Normalize maps raw classifier output to a Status. Anything that is not
// exactly "inappropriate" or "gibberish" (after trimming and lower-casing)
// counts as appropriate.
func Normalize(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case Inappropriate:
		return Inappropriate
	case Gibberish:
		return Gibberish
	default:
		return Appropriate
	}
}

// Flagged reports whether the status replaces the assistant reply.
func (s Status) Flagged() bool {
	return s == Inappropriate || s == Gibberish
}
