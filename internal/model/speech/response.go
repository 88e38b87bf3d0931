package speech

import (
	"encoding/base64"
	"time"
)

// TTSResponse 语音合成响应
type TTSResponse struct {
	RequestID string    `json:"requestId,omitempty"`
	AudioData []byte    `json:"-"`
	Format    string    `json:"format"`
	Voice     string    `json:"voice"`
	CreatedAt time.Time `json:"createdAt"`
}

// EncodedAudio 返回用于 JSON 传输的 base64 音频
func (r *TTSResponse) EncodedAudio() string {
	if r == nil || len(r.AudioData) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(r.AudioData)
}
