package document

import (
	"strings"

	"github.com/google/uuid"
)

// Node is one entry of a thread document: a heading, the raw body region
// between the heading line and the next heading line, and ordered children.
//
// Children keep insertion order; nothing in this package ever reorders them.
// Parent is a non-owning back-reference used for upward traversal only, nil
// on the document's pseudo-root.
type Node struct {
	ID       uuid.UUID
	Heading  string
	Body     string
	Children []*Node
	Parent   *Node
}

func newNode(heading, body string) *Node {
	return &Node{
		ID:      uuid.New(),
		Heading: heading,
		Body:    body,
	}
}

// Depth returns the number of headings on the path from the document root to
// the node, the node included. Top-level headings have depth 1, the
// pseudo-root depth 0.
func (n *Node) Depth() int {
	depth := 0
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// LastDescendant follows the last-child link down to a leaf and returns it,
// the node itself when it has no children.
func (n *Node) LastDescendant() *Node {
	cur := n
	for len(cur.Children) > 0 {
		cur = cur.Children[len(cur.Children)-1]
	}
	return cur
}

// bodyLines splits a raw body region into lines, without a phantom empty line
// for the final newline.
func bodyLines(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}
