package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	analysis "github.com/zhouzirui/moodi/backend/internal/analysis/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

// ClassifyExpression picks the expression for the latest assistant message.
// Without an assistant message it returns the default without calling the provider.
func (s *Service) ClassifyExpression(ctx context.Context, conv chat.Conversation) (expression.Label, error) {
	latest, ok := conv.LastByRole(chat.RoleAssistant)
	if !ok {
		return expression.Default, nil
	}

	messages, err := s.expressionTemplate.Format(ctx, map[string]any{
		"transcript": conv.Transcript(),
		"latest":     latest.Content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format expression prompt: %w", err)
	}

	raw, err := s.generate(ctx, messages, 0, s.opts.ClassifierMaxTokens)
	if errors.Is(err, provider.ErrNoChoices) {
		return expression.Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("expression classification failed: %w", err)
	}

	return resolveExpression(raw, latest.Content), nil
}

// resolveExpression validates classifier output against the label set. Unknown
// output falls back to a label named inside it, then to the keyword heuristic
// over the assistant message, then to the default.
func resolveExpression(raw, assistantMessage string) expression.Label {
	if l, ok := expression.Parse(raw); ok {
		return l
	}
	if l, ok := expression.Find(raw); ok {
		log.Printf("[expression] classifier output %q matched label %s", raw, l)
		return l
	}
	if decision, ok := analysis.Analyze(assistantMessage); ok {
		log.Printf("[expression] classifier output %q not in label set, heuristic picked %s", raw, decision.Expression)
		return decision.Expression
	}
	log.Printf("[expression] classifier output %q not in label set, using %s", raw, expression.Default)
	return expression.Default
}
