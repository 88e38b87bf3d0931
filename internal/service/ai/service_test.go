package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
	"github.com/zhouzirui/moodi/backend/internal/model/persona"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

type fakeChatModel struct {
	reply string
	err   error
	calls [][]*schema.Message
	opts  []*model.Options
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls = append(f.calls, input)
	f.opts = append(f.opts, model.GetCommonOptions(&model.Options{}, opts...))
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func newTestService(t *testing.T, fake *fakeChatModel) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(fake, persona.NewMemoryStore(persona.Seed()), DefaultOptions())
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	return svc
}

func TestNewServiceWithModelRequiresDependencies(t *testing.T) {
	if _, err := NewServiceWithModel(nil, persona.NewMemoryStore(persona.Seed()), DefaultOptions()); err == nil {
		t.Fatal("expected error without chat model")
	}
	if _, err := NewServiceWithModel(&fakeChatModel{}, persona.NewMemoryStore(nil), DefaultOptions()); err == nil {
		t.Fatal("expected error without persona")
	}
}

func TestCompletePrependsSystemPrompt(t *testing.T) {
	fake := &fakeChatModel{reply: "  Hi there!\n"}
	svc := newTestService(t, fake)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "hello"}}
	reply, err := svc.Complete(context.Background(), conv)
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "Hi there!" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected one provider call, got %d", len(fake.calls))
	}
	sent := fake.calls[0]
	if len(sent) != 2 || sent[0].Role != schema.System || !strings.Contains(sent[0].Content, "MOODi") {
		t.Fatalf("system prompt not prepended: %+v", sent)
	}
	if sent[1].Role != schema.User || sent[1].Content != "hello" {
		t.Fatalf("conversation not relayed: %+v", sent[1])
	}

	opts := fake.opts[0]
	if opts.Temperature == nil || *opts.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", opts.Temperature)
	}
	if opts.MaxTokens == nil || *opts.MaxTokens != 500 {
		t.Fatalf("expected max tokens 500, got %v", opts.MaxTokens)
	}
}

func TestCompleteKeepsBracesInContent(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	svc := newTestService(t, fake)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "what is {x} in func() {}?"}}
	if _, err := svc.Complete(context.Background(), conv); err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if got := fake.calls[0][1].Content; got != "what is {x} in func() {}?" {
		t.Fatalf("content altered by templating: %q", got)
	}
}

func TestCompleteNoChoicesFallsBack(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{err: provider.ErrNoChoices})

	reply, err := svc.Complete(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != NoCompletion {
		t.Fatalf("expected fallback completion, got %q", reply)
	}
}

func TestCompleteKeepsProviderStatus(t *testing.T) {
	upstream := &provider.StatusError{Provider: "OpenAI", StatusCode: http.StatusBadGateway, Body: "down"}
	svc := newTestService(t, &fakeChatModel{err: upstream})

	_, err := svc.Complete(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	status, ok := provider.StatusCode(err)
	if !ok || status != http.StatusBadGateway {
		t.Fatalf("expected provider status 502, got %d ok=%v (err=%v)", status, ok, err)
	}
}

func TestModerateWithoutUserMessageSkipsProvider(t *testing.T) {
	fake := &fakeChatModel{reply: "gibberish"}
	svc := newTestService(t, fake)

	conversations := []chat.Conversation{
		nil,
		{{Role: chat.RoleAssistant, Content: "Hello, how can I help?"}},
		{{Role: chat.RoleSystem, Content: "note"}, {Role: chat.RoleAssistant, Content: "hi"}},
	}
	for _, conv := range conversations {
		status, err := svc.Moderate(context.Background(), conv)
		if err != nil {
			t.Fatalf("Moderate err: %v", err)
		}
		if status != moderation.Appropriate {
			t.Fatalf("expected appropriate, got %s", status)
		}
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(fake.calls))
	}
}

func TestModerateClassifiesLatestUserMessage(t *testing.T) {
	fake := &fakeChatModel{reply: " Gibberish\n"}
	svc := newTestService(t, fake)

	conv := chat.Conversation{
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "Hi there!"},
		{Role: chat.RoleUser, Content: "asdkjf a;slkdjf"},
		{Role: chat.RoleAssistant, Content: "Pardon?"},
	}
	status, err := svc.Moderate(context.Background(), conv)
	if err != nil {
		t.Fatalf("Moderate err: %v", err)
	}
	if status != moderation.Gibberish {
		t.Fatalf("expected gibberish, got %s", status)
	}

	sent := fake.calls[0]
	if len(sent) != 2 {
		t.Fatalf("expected system + user prompt, got %d messages", len(sent))
	}
	user := sent[1].Content
	if !strings.Contains(user, "User message 3: asdkjf a;slkdjf") || !strings.Contains(user, "\"asdkjf a;slkdjf\"") {
		t.Fatalf("prompt does not carry transcript and latest message:\n%s", user)
	}
	opts := fake.opts[0]
	if opts.Temperature == nil || *opts.Temperature != 0 || opts.MaxTokens == nil || *opts.MaxTokens != 20 {
		t.Fatalf("unexpected classifier options: %+v", opts)
	}
}

func TestModerateNormalizesUnknownOutput(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "This message seems fine to me."})

	status, err := svc.Moderate(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Moderate err: %v", err)
	}
	if status != moderation.Appropriate {
		t.Fatalf("expected appropriate, got %s", status)
	}
}

func TestModerateIsIdempotent(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "inappropriate"})
	conv := chat.Conversation{{Role: chat.RoleUser, Content: "something bad"}}

	first, err := svc.Moderate(context.Background(), conv)
	if err != nil {
		t.Fatalf("Moderate err: %v", err)
	}
	second, err := svc.Moderate(context.Background(), conv)
	if err != nil {
		t.Fatalf("Moderate err: %v", err)
	}
	if first != second || first != moderation.Inappropriate {
		t.Fatalf("expected identical inappropriate verdicts, got %s and %s", first, second)
	}
}

func TestModerateSurfacesFailure(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{err: errors.New("connection reset")})

	if _, err := svc.Moderate(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("expected error from failing provider")
	}
}

func TestClassifyExpressionWithoutAssistantMessageSkipsProvider(t *testing.T) {
	fake := &fakeChatModel{reply: "rage"}
	svc := newTestService(t, fake)

	label, err := svc.ClassifyExpression(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("ClassifyExpression err: %v", err)
	}
	if label != expression.Happy {
		t.Fatalf("expected happy, got %s", label)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(fake.calls))
	}
}

func TestClassifyExpressionPromptListsLabels(t *testing.T) {
	fake := &fakeChatModel{reply: "joy"}
	svc := newTestService(t, fake)

	conv := chat.Conversation{
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "Hi there!"},
	}
	label, err := svc.ClassifyExpression(context.Background(), conv)
	if err != nil {
		t.Fatalf("ClassifyExpression err: %v", err)
	}
	if label != expression.Joy {
		t.Fatalf("expected joy, got %s", label)
	}

	system := fake.calls[0][0].Content
	for _, name := range expression.Names() {
		if !strings.Contains(system, name) {
			t.Fatalf("system prompt misses label %s", name)
		}
	}
	if !strings.Contains(system, "'nerdiness'") {
		t.Fatal("system prompt misses the nerdiness rule")
	}
}

func TestClassifyExpressionResolvesOutput(t *testing.T) {
	cases := []struct {
		name      string
		reply     string
		assistant string
		want      expression.Label
	}{
		{name: "exact", reply: "Surprised.", assistant: "Oh!", want: expression.Surprised},
		{name: "embedded", reply: "The expression is: smug", assistant: "I told you so", want: expression.Smug},
		{name: "heuristic", reply: "ecstatic", assistant: "Haha, that's hilarious", want: expression.Laughing},
		{name: "default", reply: "ecstatic", assistant: "The meeting is at noon.", want: expression.Happy},
	}

	for _, tc := range cases {
		svc := newTestService(t, &fakeChatModel{reply: tc.reply})
		conv := chat.Conversation{
			{Role: chat.RoleUser, Content: "hi"},
			{Role: chat.RoleAssistant, Content: tc.assistant},
		}
		got, err := svc.ClassifyExpression(context.Background(), conv)
		if err != nil {
			t.Fatalf("%s: ClassifyExpression err: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyExpressionNoChoicesDefaultsToHappy(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{err: provider.ErrNoChoices})

	conv := chat.Conversation{{Role: chat.RoleAssistant, Content: "hello"}}
	label, err := svc.ClassifyExpression(context.Background(), conv)
	if err != nil {
		t.Fatalf("ClassifyExpression err: %v", err)
	}
	if label != expression.Happy {
		t.Fatalf("expected happy, got %s", label)
	}
}

func TestArkFailuresFollowProviderContract(t *testing.T) {
	limited := provider.WrapArk(&fakeChatModel{err: fmt.Errorf("failed to create chat completion: %w", &arkmodel.APIError{HTTPStatusCode: http.StatusTooManyRequests})})
	svc, err := NewServiceWithModel(limited, persona.NewMemoryStore(persona.Seed()), DefaultOptions())
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	_, err = svc.Complete(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if status, ok := provider.StatusCode(err); !ok || status != http.StatusTooManyRequests {
		t.Fatalf("expected ark status 429, got %d ok=%v (err=%v)", status, ok, err)
	}

	empty := provider.WrapArk(&fakeChatModel{err: errors.New("choice with index 0 not found")})
	svc, err = NewServiceWithModel(empty, persona.NewMemoryStore(persona.Seed()), DefaultOptions())
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	reply, err := svc.Complete(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil || reply != NoCompletion {
		t.Fatalf("expected fallback completion, got %q (err=%v)", reply, err)
	}
	label, err := svc.ClassifyExpression(context.Background(), chat.Conversation{{Role: chat.RoleAssistant, Content: "hello"}})
	if err != nil || label != expression.Happy {
		t.Fatalf("expected happy, got %s (err=%v)", label, err)
	}
}
