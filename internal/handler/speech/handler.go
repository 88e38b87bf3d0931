package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/moodi/backend/internal/handler/respond"
	"github.com/zhouzirui/moodi/backend/internal/model/speech"
	"github.com/zhouzirui/moodi/backend/pkg/utils"
)

// SpeechService 抽象语音业务，便于测试与替换实现
type SpeechService interface {
	SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
}

var ttsMessages = respond.Messages{
	Invalid:  "A valid text string is required.",
	Upstream: "TTS API request failed.",
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc SpeechService
}

// New 创建语音处理器，speechSvc 为 nil 时接口返回 503
func New(speechSvc SpeechService) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes 注册 /api 下的语音路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/", h.handleSynthesize)
		speechRouter.Post("/audio", h.handleSynthesizeAudio)
		speechRouter.Get("/health", h.handleHealth)
	})
}

// RegisterLegacyRoutes 注册网页组件使用的 /tts
func (h *Handler) RegisterLegacyRoutes(r chi.Router) {
	r.Post("/tts", h.handleSynthesize)
}

// handleSynthesize 返回 {audio: base64}
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.synthesize(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"audio": resp.EncodedAudio()})
}

// handleSynthesizeAudio 直接返回音频字节，便于命令行调试
func (h *Handler) handleSynthesizeAudio(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.synthesize(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", audioContentType(resp.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.AudioData)))
	w.Header().Set("Content-Disposition", "attachment; filename=speech."+resp.Format)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.AudioData); err != nil {
		log.Printf("failed to write audio response: %v", err)
	}
}

func (h *Handler) synthesize(w http.ResponseWriter, r *http.Request) (*speech.TTSResponse, bool) {
	if h.speechSvc == nil {
		respond.Unavailable(w, "Speech service")
		return nil, false
	}

	var payload struct {
		Text  json.RawMessage `json:"text"`
		Voice string          `json:"voice"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		respond.Error(w, "speech", fmt.Errorf("%w: %v", respond.ErrInvalidInput, err), ttsMessages)
		return nil, false
	}

	// text 必须是非空字符串，数字、数组等一律拒绝
	var text string
	if err := json.Unmarshal(payload.Text, &text); err != nil {
		respond.Error(w, "speech", fmt.Errorf("%w: text is not a string", respond.ErrInvalidInput), ttsMessages)
		return nil, false
	}
	if strings.TrimSpace(text) == "" {
		respond.Error(w, "speech", fmt.Errorf("%w: text is empty", respond.ErrInvalidInput), ttsMessages)
		return nil, false
	}

	resp, err := h.speechSvc.SynthesizeSpeech(r.Context(), &speech.TTSRequest{
		RequestID: middleware.GetReqID(r.Context()),
		Text:      text,
		Voice:     payload.Voice,
	})
	if err != nil {
		respond.Error(w, "speech", err, ttsMessages)
		return nil, false
	}
	return resp, true
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.speechSvc == nil {
		status = "disabled"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": "speech",
	})
}

func audioContentType(format string) string {
	switch format {
	case "", "mp3":
		return "audio/mpeg"
	case "opus":
		return "audio/ogg"
	case "pcm":
		return "application/octet-stream"
	default:
		return "audio/" + format
	}
}
