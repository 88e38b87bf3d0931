package persona

// Persona captures the assistant character exposed to the frontend and the orchestrator.
type Persona struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Title             string `json:"title"`
	Tone              string `json:"tone"`
	SystemPrompt      string `json:"-"`                     // 发送给模型的系统提示，不对前端暴露
	VoiceID           string `json:"voiceId,omitempty"`     // TTS 声音
	DefaultExpression string `json:"defaultExpression"`     // 初始表情
	Description       string `json:"description,omitempty"` // 详细角色描述
}

// DefaultID is the persona used when no other persona is requested.
const DefaultID = "moodi"

// Seed provides the built-in persona.
func Seed() []Persona {
	return []Persona{
		{
			ID:    DefaultID,
			Name:  "MOODi",
			Title: "Mood-matching assistant",
			Tone:  "mirrors the user's emotional energy",
			SystemPrompt: "You are a assistant named MOODi. The user will provide some input text. " +
				"Match the users energy, so you may get: angry, annoyed, frustrated, smug, worried, uneasy or unhappy " +
				"to match or correct the users behaviour. You may also be: confused, exited, joyfull, nerdy, proud, suprised etc",
			VoiceID:           "echo",
			DefaultExpression: "happy",
			Description:       "A small chat companion whose face changes with the mood of the conversation.",
		},
	}
}
