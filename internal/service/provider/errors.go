package provider

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when a completion succeeds but carries no choice.
var ErrNoChoices = errors.New("provider returned no choices")

// StatusError is a non-success HTTP answer from the provider. Body is kept
// for server-side logging only.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the provider status from err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode > 0 {
		return statusErr.StatusCode, true
	}
	return 0, false
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Provider: "OpenAI", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &StatusError{Provider: "OpenAI", StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error(), Err: err}
	}

	return fmt.Errorf("openai request failed: %w", err)
}
