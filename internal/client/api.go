package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
)

// API is the orchestrator surface a Session drives.
type API interface {
	Complete(ctx context.Context, conv chat.Conversation) (string, error)
	Moderate(ctx context.Context, conv chat.Conversation) (moderation.Status, error)
	ClassifyExpression(ctx context.Context, conv chat.Conversation) (expression.Label, error)
	// SynthesizeSpeech returns decoded audio bytes.
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// HTTPError is a non-2xx answer from the orchestrator.
type HTTPError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("POST %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("POST %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
}

// HTTPAPI talks to the orchestrator over its widget routes.
type HTTPAPI struct {
	client *resty.Client
}

var _ API = (*HTTPAPI)(nil)

// NewHTTPAPI creates a client for the server at baseURL, e.g. http://localhost:3000.
func NewHTTPAPI(baseURL string, timeout time.Duration) *HTTPAPI {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPAPI{client: client}
}

type conversationRequest struct {
	Conversation chat.Conversation `json:"conversation"`
}

// Complete calls /ask. A response without completion yields "".
func (a *HTTPAPI) Complete(ctx context.Context, conv chat.Conversation) (string, error) {
	var result struct {
		Completion string `json:"completion"`
	}
	if err := a.post(ctx, "/ask", conversationRequest{Conversation: nonNil(conv)}, &result); err != nil {
		return "", err
	}
	return result.Completion, nil
}

// Moderate calls /check.
func (a *HTTPAPI) Moderate(ctx context.Context, conv chat.Conversation) (moderation.Status, error) {
	var result struct {
		Status moderation.Status `json:"status"`
	}
	if err := a.post(ctx, "/check", conversationRequest{Conversation: nonNil(conv)}, &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// ClassifyExpression calls /expression.
func (a *HTTPAPI) ClassifyExpression(ctx context.Context, conv chat.Conversation) (expression.Label, error) {
	var result struct {
		Expression expression.Label `json:"expression"`
	}
	if err := a.post(ctx, "/expression", conversationRequest{Conversation: nonNil(conv)}, &result); err != nil {
		return "", err
	}
	return result.Expression, nil
}

// SynthesizeSpeech calls /tts and decodes the base64 payload.
func (a *HTTPAPI) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	var result struct {
		Audio string `json:"audio"`
	}
	if err := a.post(ctx, "/tts", map[string]string{"text": text}, &result); err != nil {
		return nil, err
	}
	if result.Audio == "" {
		return nil, ErrNoAudio
	}

	audio, err := base64.StdEncoding.DecodeString(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}

func (a *HTTPAPI) post(ctx context.Context, path string, body, result any) error {
	var apiErr struct {
		Error string `json:"error"`
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}

	if resp.IsError() {
		return &HTTPError{Path: path, StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}

// nonNil 保证序列化为 [] 而不是 null，服务端会拒绝 null
func nonNil(conv chat.Conversation) chat.Conversation {
	if conv == nil {
		return chat.Conversation{}
	}
	return conv
}
