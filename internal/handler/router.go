package handler

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/moodi/backend/internal/handler/chat"
	"github.com/zhouzirui/moodi/backend/internal/handler/persona"
	"github.com/zhouzirui/moodi/backend/internal/handler/speech"
	middlewarePkg "github.com/zhouzirui/moodi/backend/internal/middleware"
	personaModel "github.com/zhouzirui/moodi/backend/internal/model/persona"
	"github.com/zhouzirui/moodi/backend/pkg/utils"
)

// Options 路由依赖，服务为 nil 表示未配置
type Options struct {
	Personas     personaModel.Store
	Conversation chat.ConversationService
	Speech       speech.SpeechService
	StaticDir    string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(opts.Conversation)
	speechHandler := speech.New(opts.Speech)

	// 网页组件直接调用的根路径
	chatHandler.RegisterLegacyRoutes(r)
	speechHandler.RegisterLegacyRoutes(r)

	r.Route("/api", func(api chi.Router) {
		if opts.Personas != nil {
			persona.New(opts.Personas).RegisterRoutes(api)
		}
		chatHandler.RegisterRoutes(api)
		speechHandler.RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.StaticDir != "" {
		mountStatic(r, opts.StaticDir)
	}

	return r
}

// mountStatic 托管前端静态文件
func mountStatic(r chi.Router, dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Printf("[static] invalid STATIC_DIR %q: %v", dir, err)
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		log.Printf("[static] STATIC_DIR %q is not a directory, static files disabled", abs)
		return
	}

	log.Printf("[static] serving %s", abs)
	r.Handle("/*", http.FileServer(http.Dir(abs)))
}
