package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ErrInvalidConversation is returned when a request body does not carry a usable conversation array.
var ErrInvalidConversation = errors.New("a valid conversation array is required")

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered message history kept by a client session.
type Conversation []Message

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// DecodeConversation parses the raw "conversation" field of a request body.
// A missing field, null, or any non-array value yields ErrInvalidConversation.
func DecodeConversation(raw json.RawMessage) (Conversation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidConversation
	}

	var conv Conversation
	if err := json.Unmarshal(trimmed, &conv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversation, err)
	}

	for i, msg := range conv {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidConversation, i+1, msg.Role)
		}
	}
	return conv, nil
}

// LastByRole scans from the end and returns the most recent message with the given role.
func (c Conversation) LastByRole(role Role) (Message, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == role {
			return c[i], true
		}
	}
	return Message{}, false
}

// Transcript renders the conversation as numbered lines, e.g. "User message 1: hi".
// Every non-user role is rendered as Assistant.
func (c Conversation) Transcript() string {
	lines := make([]string, 0, len(c))
	for i, msg := range c {
		speaker := "Assistant"
		if msg.Role == RoleUser {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s message %d: %s", speaker, i+1, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// Clone returns an independent copy so callers can keep appending safely.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	return append(Conversation(nil), c...)
}
