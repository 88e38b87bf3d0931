package speech

// TTSRequest 语音合成请求
type TTSRequest struct {
	RequestID string  `json:"requestId,omitempty"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice,omitempty"`  // 声音类型，留空使用配置
	Speed     float64 `json:"speed,omitempty"`  // 语速倍率
	Format    string  `json:"format,omitempty"` // mp3, opus, etc.
}
