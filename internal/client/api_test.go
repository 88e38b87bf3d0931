package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *HTTPAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPAPI(srv.URL+"/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestHTTPAPIRoutes(t *testing.T) {
	var paths []string
	var lastConversation []chat.Message
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		var body struct {
			Conversation []chat.Message `json:"conversation"`
			Text         string         `json:"text"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastConversation = body.Conversation

		switch r.URL.Path {
		case "/ask":
			writeJSON(w, http.StatusOK, `{"completion":"Hi there!"}`)
		case "/check":
			writeJSON(w, http.StatusOK, `{"status":"appropriate"}`)
		case "/expression":
			writeJSON(w, http.StatusOK, `{"expression":"joy"}`)
		case "/tts":
			assert.Equal(t, "Hi there!", body.Text)
			writeJSON(w, http.StatusOK, `{"audio":"SUQzLW1wMw=="}`)
		}
	})

	ctx := context.Background()
	conv := chat.Conversation{{Role: chat.RoleUser, Content: "hello"}}

	completion, err := api.Complete(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", completion)
	assert.Equal(t, []chat.Message{{Role: chat.RoleUser, Content: "hello"}}, lastConversation)

	status, err := api.Moderate(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, moderation.Appropriate, status)

	label, err := api.ClassifyExpression(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, expression.Joy, label)

	audio, err := api.SynthesizeSpeech(ctx, "Hi there!")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-mp3"), audio)

	assert.Equal(t, []string{"/ask", "/check", "/expression", "/tts"}, paths)
}

func TestHTTPAPISendsEmptyArrayForNilConversation(t *testing.T) {
	var raw map[string]json.RawMessage
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, `{"status":"appropriate"}`)
	})

	_, err := api.Moderate(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["conversation"]))
}

func TestHTTPAPIReturnsHTTPError(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"error":"OpenAI API request failed."}`)
	})

	_, err := api.Complete(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "x"}})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "OpenAI API request failed.", httpErr.Message)
	assert.Equal(t, "/ask", httpErr.Path)
}

func TestHTTPAPIMissingAudio(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := api.SynthesizeSpeech(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestHTTPAPIConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	api := NewHTTPAPI(srv.URL, time.Second)
	_, err := api.Complete(context.Background(), chat.Conversation{})

	require.Error(t, err)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}
