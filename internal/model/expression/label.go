package expression

import (
	"strings"
	"unicode"
)

// Label names one of the expression images shown next to the reply bubble.
type Label string

const (
	Angry      Label = "angry"
	Annoyed    Label = "annoyed"
	Confused   Label = "confused"
	Crying     Label = "crying"
	Disgust    Label = "disgust"
	Error      Label = "error"
	Evil       Label = "evil"
	Exited     Label = "exited"
	Frustrated Label = "frustrated"
	Furious    Label = "furious"
	Happy      Label = "happy"
	Joy        Label = "joy"
	Laughing   Label = "laughing"
	Loving     Label = "loving"
	Nerdiness  Label = "nerdiness"
	Goofy      Label = "goofy"
	Proud      Label = "proud"
	Rage       Label = "rage"
	Sad        Label = "sad"
	Smug       Label = "smug"
	Surprised  Label = "surprised"
	Uneasy     Label = "uneasy"
	Unhappy    Label = "unhappy"
	Winking    Label = "winking"
	Worried    Label = "worried"
)

// Default is shown before the first reply and whenever classification cannot decide.
const Default = Happy

// all keeps the order the classifier prompt presents the labels in.
var all = []Label{
	Angry, Annoyed, Confused, Crying, Disgust, Error, Evil, Exited, Frustrated,
	Furious, Happy, Joy, Laughing, Loving, Nerdiness, Goofy, Proud, Rage, Sad,
	Smug, Surprised, Uneasy, Unhappy, Winking, Worried,
}

var known = func() map[Label]struct{} {
	set := make(map[Label]struct{}, len(all))
	for _, l := range all {
		set[l] = struct{}{}
	}
	return set
}()

// All returns the closed label set.
func All() []Label {
	return append([]Label(nil), all...)
}

// Names returns the label set as plain strings.
func Names() []string {
	names := make([]string, len(all))
	for i, l := range all {
		names[i] = string(l)
	}
	return names
}

// Valid reports whether l belongs to the label set.
func (l Label) Valid() bool {
	_, ok := known[l]
	return ok
}

// Parse accepts an exact label, ignoring case, surrounding whitespace, quotes and punctuation.
func Parse(raw string) (Label, bool) {
	candidate := Label(strings.ToLower(strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r)
	})))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

// Find returns the first label that appears as a whole word in free text,
// e.g. "Expression: nerdiness." yields Nerdiness.
func Find(text string) (Label, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if l := Label(w); l.Valid() {
			return l, true
		}
	}
	return "", false
}
