package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STATIC_DIR", "AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"AI_COMPLETION_TEMPERATURE", "AI_COMPLETION_MAX_TOKENS", "AI_CLASSIFIER_MAX_TOKENS", "AI_TIMEOUT",
		"SPEECH_API_KEY", "SPEECH_BASE_URL", "SPEECH_TTS_MODEL", "SPEECH_TTS_VOICE", "SPEECH_TTS_FORMAT",
		"SPEECH_TTS_SPEED", "SPEECH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderOpenAI || cfg.AI.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected provider defaults: %+v", cfg.AI)
	}
	if cfg.AI.CompletionTemperature != 0.7 || cfg.AI.CompletionMaxTokens != 500 || cfg.AI.ClassifierMaxTokens != 20 {
		t.Fatalf("unexpected sampling defaults: %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.AI.Timeout)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without a key")
	}
	if cfg.Speech.Model != "tts-1" || cfg.Speech.Voice != "" || cfg.Speech.Format != "mp3" || cfg.Speech.Enabled {
		t.Fatalf("unexpected speech defaults: %+v", cfg.Speech)
	}
}

func TestLoadSpeechReusesOpenAIKey(t *testing.T) {
	t.Setenv("SPEECH_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://proxy.local/v1")
	t.Setenv("SPEECH_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled || cfg.Speech.APIKey != "sk-test" || cfg.Speech.BaseURL != "http://proxy.local/v1" {
		t.Fatalf("speech config should reuse OpenAI settings: %+v", cfg.Speech)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI must be enabled with OPENAI_API_KEY")
	}
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	server, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", server.Addr)
	}

	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "llama")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_COMPLETION_MAX_TOKENS", "lots")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric max tokens")
	}
}

func TestArkEnabledNeedsModelAndCredentials(t *testing.T) {
	cfg := AIConfig{Provider: ProviderArk, ArkAPIKey: "key"}
	if cfg.Enabled() {
		t.Fatal("ark without model must be disabled")
	}
	cfg.ArkModel = "ep-123"
	if !cfg.Enabled() {
		t.Fatal("ark with key and model must be enabled")
	}
}

func TestSpeechServiceConfig(t *testing.T) {
	cfg := SpeechConfig{APIKey: "k", Model: "tts-1", Voice: "echo", Format: "mp3", Speed: 1.1, Timeout: 30}

	svc := cfg.ServiceConfig("nova")
	if svc.APIKey != "k" || svc.TTSModel != "tts-1" || svc.TTSVoice != "echo" || svc.TTSFormat != "mp3" || svc.TTSSpeed != 1.1 || svc.Timeout != 30 {
		t.Fatalf("unexpected service config: %+v", svc)
	}
}

func TestSpeechServiceConfigFallsBackToPersonaVoice(t *testing.T) {
	cfg := SpeechConfig{APIKey: "k", Model: "tts-1"}

	if svc := cfg.ServiceConfig(" onyx "); svc.TTSVoice != "onyx" {
		t.Fatalf("expected persona voice, got %q", svc.TTSVoice)
	}
	if svc := cfg.ServiceConfig(""); svc.TTSVoice != "" {
		t.Fatalf("expected empty voice for service default, got %q", svc.TTSVoice)
	}
}

func TestLoadSpeechVoiceOverride(t *testing.T) {
	t.Setenv("SPEECH_TTS_VOICE", "alloy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if svc := cfg.Speech.ServiceConfig("echo"); svc.TTSVoice != "alloy" {
		t.Fatalf("env voice must win over persona voice, got %q", svc.TTSVoice)
	}
}
