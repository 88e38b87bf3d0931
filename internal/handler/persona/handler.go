package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/moodi/backend/internal/model/expression"
	"github.com/zhouzirui/moodi/backend/internal/model/persona"
	"github.com/zhouzirui/moodi/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/persona", h.handleDefaultPersona)
	r.Get("/personas", h.handleListPersonas)
}

// handleDefaultPersona 返回当前角色及前端可用的表情列表
func (h *Handler) handleDefaultPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := persona.Default(h.personas)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, struct {
		persona.Persona
		Expressions []string `json:"expressions"`
	}{
		Persona:     p,
		Expressions: expression.Names(),
	})
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
