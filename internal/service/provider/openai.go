package provider

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds the credentials and endpoint for the OpenAI API.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI adapts the OpenAI chat completion and speech endpoints. It satisfies
// eino's model.BaseChatModel so prompt templates and services can stay
// provider-agnostic, and keeps the provider's HTTP status on failures.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ model.BaseChatModel = (*OpenAI)(nil)

// NewOpenAI builds a client for the configured endpoint.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  modelName,
	}, nil
}

// Generate sends one chat completion request and returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	modelName := o.model
	options := model.GetCommonOptions(&model.Options{Model: &modelName}, opts...)

	req := openai.ChatCompletionRequest{
		Model:    *options.Model,
		Messages: toOpenAIMessages(input),
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}
	if options.Temperature != nil {
		req.Temperature = wireTemperature(*options.Temperature)
	}
	if options.TopP != nil {
		req.TopP = *options.TopP
	}
	if len(options.Stop) > 0 {
		req.Stop = options.Stop
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	return &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(choice.FinishReason),
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		},
	}, nil
}

// Stream is served from a single Generate call; the orchestrator never streams.
func (o *OpenAI) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := o.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// SpeechRequest selects the voice and model for one synthesis call.
type SpeechRequest struct {
	Model  string
	Voice  string
	Format string
	Speed  float64
	Input  string
}

// Speech synthesizes text and returns the complete audio body.
func (o *OpenAI) Speech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	speechReq := openai.CreateSpeechRequest{
		Model: openai.SpeechModel(req.Model),
		Input: req.Input,
		Voice: openai.SpeechVoice(req.Voice),
	}
	if req.Format != "" {
		speechReq.ResponseFormat = openai.SpeechResponseFormat(req.Format)
	}
	if req.Speed > 0 {
		speechReq.Speed = req.Speed
	}

	resp, err := o.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech body: %w", err)
	}
	return audio, nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return messages
}

// wireTemperature keeps an explicit zero on the wire. The request struct drops
// zero values, which would leave the API at its default of 1.
func wireTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
