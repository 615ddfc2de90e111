package conversation

import (
	"github.com/go-go-golems/cricket/pkg/document"
)

// Build maps a root-first ancestor chain to a conversation. The system
// preamble comes first, then one message per chain entry: assistant when the
// entry's heading equals the AI name exactly, user otherwise. Entry bodies
// pass through verbatim.
func Build(chain []document.Entry, rc RoleConfig) Conversation {
	messages := make(Conversation, 0, len(chain)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: rc.Preamble})
	for _, entry := range chain {
		role := RoleUser
		if entry.Heading == rc.AIName {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: entry.Body})
	}
	return messages
}
