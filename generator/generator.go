package generator

import (
	"context"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat turn. System replaces any system entries in
// History.
type Request struct {
	System  string
	History []Message
	Prompt  string
}

type Generator interface {
	// Validate reports a missing credential without touching the network.
	Validate() error
	Generate(ctx context.Context, req Request) (string, error)
}

// NormalizeRole maps provider specific role names onto user, assistant
// and system.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "model", "ai", "bot":
		return RoleAssistant
	case "system":
		return RoleSystem
	default:
		return RoleUser
	}
}

// Conversation returns the history without system entries and with
// normalized roles.
func Conversation(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, msg := range history {
		role := NormalizeRole(msg.Role)
		if role == RoleSystem {
			continue
		}
		out = append(out, Message{Role: role, Content: msg.Content})
	}
	return out
}
