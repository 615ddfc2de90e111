package conversation

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one turn of a conversation. Immutable once built; order within
// a Conversation is chronological, oldest first.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// View renders a message for terminal display.
func (m Message) View() string {
	return fmt.Sprintf("[%s]: %s", m.Role, strings.TrimRight(m.Content, "\n"))
}

type Conversation []Message

// GetSinglePrompt flattens the conversation into a single prompt string for
// backends without a chat-message API. A single message passes through
// verbatim.
func (messages Conversation) GetSinglePrompt() string {
	if len(messages) == 0 {
		return ""
	}
	if len(messages) == 1 {
		return messages[0].Content
	}

	prompt := ""
	for _, message := range messages {
		prompt += fmt.Sprintf("[%s]: %s\n", message.Role, message.Content)
	}
	return prompt
}

// RoleConfig carries the heading names that classify conversation roles and
// the system preamble. It is threaded explicitly through calls so several
// configurations can coexist in one process.
type RoleConfig struct {
	UserName string `json:"userName" yaml:"user-name"`
	AIName   string `json:"aiName" yaml:"ai-name"`
	Preamble string `json:"preamble" yaml:"preamble"`
}
