package expression

import (
	"strings"
	"unicode"
	"unicode/utf8"

	label "github.com/zhouzirui/moodi/backend/internal/model/expression"
)

// Decision is the heuristic verdict for one assistant message.
type Decision struct {
	Expression label.Label
	Score      int
}

var keywordBuckets = map[label.Label][]string{
	label.Angry:      {"angry", "how dare", "unacceptable", "stop that"},
	label.Annoyed:    {"annoying", "annoyed", "ugh", "seriously?", "again?"},
	label.Confused:   {"confused", "not sure what you mean", "what do you mean", "i don't understand", "huh"},
	label.Crying:     {"crying", "tears", "sob", "heartbroken"},
	label.Disgust:    {"gross", "disgusting", "yuck", "eww"},
	label.Evil:       {"muahaha", "evil", "sinister", "world domination"},
	label.Exited:     {"excited", "can't wait", "awesome", "amazing", "wow"},
	label.Frustrated: {"frustrating", "frustrated", "for the last time"},
	label.Furious:    {"furious", "outrageous", "livid"},
	label.Happy:      {"glad", "happy", "nice", "great", "good to hear"},
	label.Joy:        {"joy", "wonderful", "delighted", "yay", "hooray"},
	label.Laughing:   {"haha", "lol", "hilarious", "funny", "lmao"},
	label.Loving:     {"love", "sweet", "adorable", "hug", "care about you"},
	label.Nerdiness:  {"equals", "formula", "calculate", "therefore", "algorithm", "technically", "in fact"},
	label.Goofy:      {"silly", "goofy", "wacky", "bonkers"},
	label.Proud:      {"proud", "well done", "nailed it", "great job"},
	label.Rage:       {"rage", "enough!", "i've had it"},
	label.Sad:        {"sad", "sorry to hear", "unfortunately", "miss"},
	label.Smug:       {"obviously", "of course i", "told you so", "clearly"},
	label.Surprised:  {"really?", "no way", "surprising", "whoa", "oh!"},
	label.Uneasy:     {"uneasy", "uncomfortable", "not comfortable", "awkward"},
	label.Unhappy:    {"unhappy", "disappointed", "not great"},
	label.Winking:    {";)", "wink", "just kidding", "between us"},
	label.Worried:    {"worried", "careful", "be safe", "concerned", "hope you're okay"},
}

// Analyze scores an assistant message against keyword buckets. ok is false
// when nothing matched, so callers can fall back to the default expression.
func Analyze(text string) (Decision, bool) {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{}, false
	}

	scores := make(map[label.Label]int)
	for l, keywords := range keywordBuckets {
		for _, word := range keywords {
			if containsWord(normalized, word) {
				scores[l] += 3
			}
		}
	}

	// 计算与具体答案一律视为 nerdiness
	if looksLikeMath(normalized) {
		scores[label.Nerdiness] += 5
	}

	exclamations := strings.Count(text, "!")
	if exclamations > 1 {
		scores[label.Exited] += exclamations
	} else if exclamations == 1 {
		scores[label.Happy]++
	}

	best := label.Label("")
	bestScore := 0
	// 遍历固定顺序，保证同分时结果稳定
	for _, l := range label.All() {
		if s := scores[l]; s > bestScore {
			best, bestScore = l, s
		}
	}

	if bestScore == 0 {
		return Decision{}, false
	}
	return Decision{Expression: best, Score: bestScore}, true
}

// containsWord 按整词匹配关键词，避免 "miss" 命中 "mission"。
// 关键词首尾若是标点（如 ";)"），该侧不要求词边界。
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)

	for start := 0; start < len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)

		before := i == 0 || !isWordRune(first)
		if !before {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			before = !isWordRune(prev)
		}
		after := end == len(text) || !isWordRune(last)
		if !after {
			next, _ := utf8.DecodeRuneInString(text[end:])
			after = !isWordRune(next)
		}
		if before && after {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// looksLikeMath reports an arithmetic expression such as "12 * 4 = 48".
func looksLikeMath(text string) bool {
	digits := 0
	operators := 0
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune("+-*/=×÷^", r):
			operators++
		}
	}
	return digits >= 2 && operators >= 1
}
