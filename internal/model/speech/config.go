package speech

// SpeechConfig 语音服务配置
type SpeechConfig struct {
	APIKey  string `json:"-"`       // 服务商 Bearer 凭证
	BaseURL string `json:"baseUrl"` // 基础URL，留空使用官方地址

	// TTS 配置
	TTSModel  string  `json:"ttsModel"`  // tts-1, tts-1-hd
	TTSVoice  string  `json:"ttsVoice"`  // echo, alloy, ...
	TTSFormat string  `json:"ttsFormat"` // mp3, opus, aac, flac
	TTSSpeed  float64 `json:"ttsSpeed"`  // 0.25-4.0，0 表示服务端默认

	// 通用配置
	Timeout int `json:"timeout"` // seconds
}
