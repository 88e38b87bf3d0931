package expression

import (
	"testing"

	label "github.com/zhouzirui/moodi/backend/internal/model/expression"
)

func TestAnalyzeMathIsNerdiness(t *testing.T) {
	decision, ok := Analyze("Sure! 12 * 4 = 48.")
	if !ok || decision.Expression != label.Nerdiness {
		t.Fatalf("expected nerdiness, got %s ok=%v", decision.Expression, ok)
	}
}

func TestAnalyzeLaughing(t *testing.T) {
	decision, ok := Analyze("Haha, that is hilarious")
	if !ok || decision.Expression != label.Laughing {
		t.Fatalf("expected laughing, got %s ok=%v", decision.Expression, ok)
	}
}

func TestAnalyzeNoSignal(t *testing.T) {
	if _, ok := Analyze("The meeting is at the usual place."); ok {
		t.Fatal("expected no decision for neutral text")
	}
	if _, ok := Analyze("   "); ok {
		t.Fatal("expected no decision for empty text")
	}
}

func TestAnalyzeAlwaysReturnsKnownLabel(t *testing.T) {
	inputs := []string{"I'm so worried, be safe!", "Wow, can't wait!!!", "Ugh, seriously?", "I love you too"}
	for _, in := range inputs {
		decision, ok := Analyze(in)
		if !ok {
			t.Fatalf("expected a decision for %q", in)
		}
		if !decision.Expression.Valid() {
			t.Fatalf("analyzer returned unknown label %q for %q", decision.Expression, in)
		}
	}
}

func TestAnalyzeMatchesWholeWords(t *testing.T) {
	if _, ok := Analyze("Our mission today is a lollipop."); ok {
		t.Fatal("keywords inside longer words must not match")
	}

	decision, ok := Analyze("I miss you")
	if !ok || decision.Expression != label.Sad {
		t.Fatalf("expected sad, got %s ok=%v", decision.Expression, ok)
	}

	decision, ok = Analyze("Just between friends;)")
	if !ok || decision.Expression != label.Winking {
		t.Fatalf("expected winking, got %s ok=%v", decision.Expression, ok)
	}
}
