package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

// ark 在没有候选回复时只返回普通错误，只能按文案识别
var arkNoChoiceMarkers = []string{
	"choice with index 0 not found",
	"empty choices",
	"no choices",
}

// Ark wraps the eino-ext ark chat model so its failures look like any other
// provider: HTTP failures become *StatusError and an empty answer becomes
// ErrNoChoices.
type Ark struct {
	inner model.BaseChatModel
}

var _ model.BaseChatModel = (*Ark)(nil)

// NewArk creates the ark chat model from cfg.
func NewArk(ctx context.Context, cfg *ark.ChatModelConfig) (*Ark, error) {
	inner, err := ark.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return WrapArk(inner), nil
}

// WrapArk adapts an existing ark-backed model.
func WrapArk(inner model.BaseChatModel) *Ark {
	return &Ark{inner: inner}
}

func (a *Ark) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	msg, err := a.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, wrapArkError(err)
	}
	if msg == nil {
		return nil, ErrNoChoices
	}
	return msg, nil
}

func (a *Ark) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	stream, err := a.inner.Stream(ctx, input, opts...)
	if err != nil {
		return nil, wrapArkError(err)
	}
	return stream, nil
}

func wrapArkError(err error) error {
	var apiErr *arkmodel.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Provider: "Ark", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}

	var reqErr *arkmodel.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &StatusError{Provider: "Ark", StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error(), Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range arkNoChoiceMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrNoChoices, err)
		}
	}

	return fmt.Errorf("ark request failed: %w", err)
}
