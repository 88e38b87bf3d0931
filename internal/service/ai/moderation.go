package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

// Moderate classifies the latest user message. A conversation without any
// user message is appropriate and never reaches the provider.
func (s *Service) Moderate(ctx context.Context, conv chat.Conversation) (moderation.Status, error) {
	latest, ok := conv.LastByRole(chat.RoleUser)
	if !ok {
		return moderation.Appropriate, nil
	}

	messages, err := s.moderationTemplate.Format(ctx, map[string]any{
		"transcript": conv.Transcript(),
		"latest":     latest.Content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format moderation prompt: %w", err)
	}

	raw, err := s.generate(ctx, messages, 0, s.opts.ClassifierMaxTokens)
	if errors.Is(err, provider.ErrNoChoices) {
		return moderation.Appropriate, nil
	}
	if err != nil {
		return "", fmt.Errorf("moderation failed: %w", err)
	}

	status := moderation.Normalize(raw)
	if status.Flagged() {
		log.Printf("[moderation] latest user message flagged as %s", status)
	}
	return status, nil
}
