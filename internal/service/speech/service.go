package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/moodi/backend/internal/model/speech"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
)

// ErrEmptyText 表示没有可合成的文本
var ErrEmptyText = errors.New("TTS text is empty")

// Synthesizer 语音合成后端，生产环境为 provider.OpenAI
type Synthesizer interface {
	Speech(ctx context.Context, req provider.SpeechRequest) ([]byte, error)
}

// Service 语音服务核心业务逻辑
type Service struct {
	config *speech.SpeechConfig
	synth  Synthesizer
}

// NewService 创建语音服务实例，使用 OpenAI 语音接口
func NewService(config *speech.SpeechConfig) (*Service, error) {
	if config == nil {
		return nil, errors.New("speech config is required")
	}

	client, err := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:  config.APIKey,
		BaseURL: config.BaseURL,
		Timeout: time.Duration(config.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return NewServiceWithSynthesizer(config, client), nil
}

// NewServiceWithSynthesizer 使用已有的合成后端创建语音服务
func NewServiceWithSynthesizer(config *speech.SpeechConfig, synth Synthesizer) *Service {
	cfg := speech.SpeechConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = "tts-1"
	}
	if cfg.TTSVoice == "" {
		cfg.TTSVoice = "echo"
	}
	if cfg.TTSFormat == "" {
		cfg.TTSFormat = "mp3"
	}
	return &Service{config: &cfg, synth: synth}
}

// SynthesizeSpeech 文字转语音，读取完整音频后返回
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	voice := firstNonEmpty(req.Voice, s.config.TTSVoice)
	format := firstNonEmpty(req.Format, s.config.TTSFormat)
	speed := req.Speed
	if speed <= 0 {
		speed = s.config.TTSSpeed
	}

	start := time.Now()
	audio, err := s.synth.Speech(ctx, provider.SpeechRequest{
		Model:  s.config.TTSModel,
		Voice:  voice,
		Format: format,
		Speed:  speed,
		Input:  req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	log.Printf("[speech] request=%s voice=%s bytes=%d took=%s", requestID, voice, len(audio), time.Since(start).Round(time.Millisecond))

	return &speech.TTSResponse{
		RequestID: requestID,
		AudioData: audio,
		Format:    format,
		Voice:     voice,
		CreatedAt: time.Now(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
