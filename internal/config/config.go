package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/moodi/backend/internal/model/speech"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

// 支持的模型服务商
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Speech SpeechConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Speech: speech}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr      string
	StaticDir string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port, StaticDir: staticDir}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, StaticDir: staticDir}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string

	// OpenAI
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// Volcengine Ark
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	CompletionTemperature float32
	CompletionMaxTokens   int
	ClassifierMaxTokens   int
	Timeout               time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	default:
		return c.OpenAIKey != ""
	}
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s 凭证或模型配置缺失", c.Provider)
	}

	switch c.Provider {
	case ProviderArk:
		cfg := &ark.ChatModelConfig{
			BaseURL:   c.ArkBaseURL,
			Region:    c.ArkRegion,
			APIKey:    c.ArkAPIKey,
			AccessKey: c.ArkAccessKey,
			SecretKey: c.ArkSecretKey,
			Model:     c.ArkModel,
		}
		// 编排层不做重试
		noRetry := 0
		cfg.RetryTimes = &noRetry
		if c.Timeout > 0 {
			timeout := c.Timeout
			cfg.Timeout = &timeout
		}
		return provider.NewArk(ctx, cfg)
	case ProviderOpenAI:
		return provider.NewOpenAI(c.OpenAIConfig())
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", c.Provider)
	}
}

// OpenAIConfig 返回 OpenAI 客户端配置，语音合成同样复用。
func (c AIConfig) OpenAIConfig() provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:  c.OpenAIKey,
		BaseURL: c.OpenAIBaseURL,
		Model:   c.OpenAIModel,
		Timeout: c.Timeout,
	}
}

func loadAIConfig() (AIConfig, error) {
	providerName := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if providerName != ProviderOpenAI && providerName != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", providerName)
	}

	temperature := float32(0.7)
	if override, err := parseOptionalFloatEnv("AI_COMPLETION_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = float32(*override)
	}

	completionMax := 500
	if override, err := parseOptionalIntEnv("AI_COMPLETION_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		completionMax = *override
	}

	classifierMax := 20
	if override, err := parseOptionalIntEnv("AI_CLASSIFIER_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			classifierMax = 1
		} else {
			classifierMax = *override
		}
	}

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("AI_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return AIConfig{
		Provider:              providerName,
		OpenAIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:         strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ArkAPIKey:             strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:          strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:          strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:              strings.TrimSpace(os.Getenv("Model")),
		ArkBaseURL:            getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:             getEnvOrDefault("ARK_REGION", "cn-beijing"),
		CompletionTemperature: temperature,
		CompletionMaxTokens:   completionMax,
		ClassifierMaxTokens:   classifierMax,
		Timeout:               time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SpeechConfig 描述语音服务相关配置
type SpeechConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Format  string
	Speed   float64
	Timeout int
	Enabled bool
}

// ServiceConfig 转换为语音服务使用的配置。未设置 SPEECH_TTS_VOICE 时使用 defaultVoice（角色声音）
func (c SpeechConfig) ServiceConfig(defaultVoice string) *speech.SpeechConfig {
	voice := c.Voice
	if voice == "" {
		voice = strings.TrimSpace(defaultVoice)
	}
	return &speech.SpeechConfig{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		TTSModel:  c.Model,
		TTSVoice:  voice,
		TTSFormat: c.Format,
		TTSSpeed:  c.Speed,
		Timeout:   c.Timeout,
	}
}

func loadSpeechConfig() (SpeechConfig, error) {
	// 解析超时设置
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30 // 默认30秒
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloatEnv("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := 0.0 // 0 表示服务端默认语速
	if speed != nil {
		ttsSpeed = *speed
	}

	// 如果没有专门的语音凭证，复用 OpenAI 凭证
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	baseURL := strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	}

	return SpeechConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   getEnvOrDefault("SPEECH_TTS_MODEL", "tts-1"),
		Voice:   strings.TrimSpace(os.Getenv("SPEECH_TTS_VOICE")),
		Format:  getEnvOrDefault("SPEECH_TTS_FORMAT", "mp3"),
		Speed:   ttsSpeed,
		Timeout: timeoutSeconds,
		Enabled: apiKey != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
