package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/moodi/backend/internal/config"
	"github.com/zhouzirui/moodi/backend/internal/handler"
	"github.com/zhouzirui/moodi/backend/internal/model/persona"
	"github.com/zhouzirui/moodi/backend/internal/service/ai"
	"github.com/zhouzirui/moodi/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	opts := handler.Options{
		Personas:  personaStore,
		StaticDir: cfg.Server.StaticDir,
	}

	// 对话、审核、表情共用一个模型
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, personaStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			opts.Conversation = aiService
			log.Printf("AI service initialized with provider %s", cfg.AI.Provider)
		}
	} else {
		log.Printf("%s 凭证未配置，跳过 AI 功能初始化", cfg.AI.Provider)
	}

	if cfg.Speech.Enabled {
		// 默认使用角色的声音，SPEECH_TTS_VOICE 可覆盖
		var voice string
		if p, ok := persona.Default(personaStore); ok {
			voice = p.VoiceID
		}
		speechCfg := cfg.Speech.ServiceConfig(voice)
		speechService, err := speech.NewService(speechCfg)
		if err != nil {
			log.Printf("warning: failed to initialize speech service: %v", err)
		} else {
			opts.Speech = speechService
			log.Printf("Speech service initialized (model=%s voice=%s)", speechCfg.TTSModel, speechCfg.TTSVoice)
		}
	} else {
		log.Println("语音服务凭证未配置，跳过语音功能初始化")
	}

	router := handler.NewRouter(opts)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MOODi backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
