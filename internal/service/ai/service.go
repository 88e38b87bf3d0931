package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/moodi/backend/internal/config"
	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/persona"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

// NoCompletion is returned to the client when the provider answers without a choice.
const NoCompletion = "No completion returned."

// Options tunes the sampling parameters of each call.
type Options struct {
	CompletionTemperature float32
	CompletionMaxTokens   int
	ClassifierMaxTokens   int
}

// DefaultOptions mirrors the production defaults.
func DefaultOptions() Options {
	return Options{
		CompletionTemperature: 0.7,
		CompletionMaxTokens:   500,
		ClassifierMaxTokens:   20,
	}
}

// Service wraps the chat model with the completion, moderation and expression prompts.
// It holds no per-conversation state; every call is independent.
type Service struct {
	chatModel model.BaseChatModel
	persona   persona.Persona
	opts      Options

	completionTemplate prompt.ChatTemplate
	moderationTemplate prompt.ChatTemplate
	expressionTemplate prompt.ChatTemplate
}

// NewService creates a chat model from configuration and builds the service on top of it.
func NewService(ctx context.Context, personas persona.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewServiceWithModel(chatModel, personas, Options{
		CompletionTemperature: cfg.CompletionTemperature,
		CompletionMaxTokens:   cfg.CompletionMaxTokens,
		ClassifierMaxTokens:   cfg.ClassifierMaxTokens,
	})
}

// NewServiceWithModel builds the service around an existing chat model.
func NewServiceWithModel(chatModel model.BaseChatModel, personas persona.Store, opts Options) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if personas == nil {
		return nil, errors.New("persona store is required")
	}

	p, ok := persona.Default(personas)
	if !ok {
		return nil, errors.New("no persona configured")
	}

	defaults := DefaultOptions()
	if opts.CompletionMaxTokens <= 0 {
		opts.CompletionMaxTokens = defaults.CompletionMaxTokens
	}
	if opts.ClassifierMaxTokens <= 0 {
		opts.ClassifierMaxTokens = defaults.ClassifierMaxTokens
	}

	return &Service{
		chatModel: chatModel,
		persona:   p,
		opts:      opts,

		completionTemplate: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.MessagesPlaceholder("conversation", false),
		),
		moderationTemplate: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage(moderationSystemPrompt),
			schema.UserMessage(moderationUserPrompt),
		),
		expressionTemplate: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage(expressionSystemPrompt),
			schema.UserMessage(expressionUserPrompt),
		),
	}, nil
}

// Complete relays the conversation, prefixed with the persona system prompt,
// and returns the trimmed reply.
func (s *Service) Complete(ctx context.Context, conv chat.Conversation) (string, error) {
	messages, err := s.completionTemplate.Format(ctx, map[string]any{
		"system":       s.persona.SystemPrompt,
		"conversation": toSchemaMessages(conv),
	})
	if err != nil {
		return "", fmt.Errorf("failed to format completion prompt: %w", err)
	}

	reply, err := s.generate(ctx, messages, s.opts.CompletionTemperature, s.opts.CompletionMaxTokens)
	if errors.Is(err, provider.ErrNoChoices) {
		return NoCompletion, nil
	}
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	log.Printf("[ai] completion for %d messages, length=%d", len(conv), len(reply))
	return reply, nil
}

func (s *Service) generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int) (string, error) {
	resp, err := s.chatModel.Generate(ctx, messages,
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", provider.ErrNoChoices
	}
	return strings.TrimSpace(resp.Content), nil
}

func toSchemaMessages(conv chat.Conversation) []*schema.Message {
	messages := make([]*schema.Message, 0, len(conv))
	for _, msg := range conv {
		switch msg.Role {
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		case chat.RoleSystem:
			messages = append(messages, schema.SystemMessage(msg.Content))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}
	return messages
}
