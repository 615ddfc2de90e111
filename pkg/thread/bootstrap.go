package thread

import (
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
)

// Bootstrap appends the opening user heading to doc, leaving the blank line
// that positions the next input. Appends only, never inserts mid-tree.
func Bootstrap(doc *document.Document, rc conversation.RoleConfig) *document.Node {
	return doc.AppendTopLevel(rc.UserName, "\n")
}

// BootstrapSeeded appends the opening user node with a rendered seed body
// instead of an empty turn.
func BootstrapSeeded(doc *document.Document, rc conversation.RoleConfig, seed Seed) (*document.Node, error) {
	body, err := seed.Render()
	if err != nil {
		return nil, err
	}
	return doc.AppendTopLevel(rc.UserName, body), nil
}
