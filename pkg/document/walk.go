package document

import "github.com/pkg/errors"

// CollectAncestors walks from n up to the document root and returns the
// entries along the way, root first, n's own entry last. The chain length
// equals n's depth. Read-only; neither the tree nor the node is touched.
func CollectAncestors(n *Node) ([]Entry, error) {
	if n == nil {
		return nil, errors.New("cannot collect ancestors without a node")
	}
	var chain []Entry
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		chain = append([]Entry{Extract(cur)}, chain...)
	}
	if len(chain) == 0 {
		return nil, errors.New("node is not attached to a document")
	}
	return chain, nil
}
