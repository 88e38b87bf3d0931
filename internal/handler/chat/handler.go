package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/moodi/backend/internal/handler/respond"
	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/moderation"
	"github.com/zhouzirui/moodi/backend/pkg/utils"
)

// ConversationService 抽象对话相关的三个模型调用，便于测试替换
type ConversationService interface {
	Complete(ctx context.Context, conv chat.Conversation) (string, error)
	Moderate(ctx context.Context, conv chat.Conversation) (moderation.Status, error)
	ClassifyExpression(ctx context.Context, conv chat.Conversation) (expression.Label, error)
}

var (
	completeMessages = respond.Messages{
		Invalid:  "No valid conversation array provided.",
		Upstream: "OpenAI API request failed.",
	}
	classifyMessages = respond.Messages{
		Invalid:  "A valid conversation array is required.",
		Upstream: "OpenAI API request failed.",
	}
)

// Handler 对话服务的HTTP处理器
type Handler struct {
	svc ConversationService
}

// New 创建对话处理器，svc 为 nil 时所有接口返回 503
func New(svc ConversationService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册 /api 下的对话路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/complete", h.handleComplete)
	r.Post("/moderate", h.handleModerate)
	r.Post("/expression", h.handleExpression)
}

// RegisterLegacyRoutes 注册网页组件使用的根路径路由
func (h *Handler) RegisterLegacyRoutes(r chi.Router) {
	r.Post("/ask", h.handleComplete)
	r.Post("/check", h.handleModerate)
	r.Post("/expression", h.handleExpression)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.decode(w, r, completeMessages)
	if !ok {
		return
	}

	completion, err := h.svc.Complete(r.Context(), conv)
	if err != nil {
		respond.Error(w, "complete", err, completeMessages)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"completion": completion})
}

func (h *Handler) handleModerate(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.decode(w, r, classifyMessages)
	if !ok {
		return
	}

	status, err := h.svc.Moderate(r.Context(), conv)
	if err != nil {
		respond.Error(w, "moderate", err, classifyMessages)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]moderation.Status{"status": status})
}

func (h *Handler) handleExpression(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.decode(w, r, classifyMessages)
	if !ok {
		return
	}

	label, err := h.svc.ClassifyExpression(r.Context(), conv)
	if err != nil {
		respond.Error(w, "expression", err, classifyMessages)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]expression.Label{"expression": label})
}

// decode 解析 {conversation: [...]}，失败时直接写出响应
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, msgs respond.Messages) (chat.Conversation, bool) {
	if h.svc == nil {
		respond.Unavailable(w, "AI service")
		return nil, false
	}

	var payload struct {
		Conversation json.RawMessage `json:"conversation"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		respond.Error(w, "conversation", fmt.Errorf("%w: %v", respond.ErrInvalidInput, err), msgs)
		return nil, false
	}

	conv, err := chat.DecodeConversation(payload.Conversation)
	if err != nil {
		respond.Error(w, "conversation", err, msgs)
		return nil, false
	}
	return conv, true
}
