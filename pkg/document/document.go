package document

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Document is a rooted, ordered tree of nodes parsed from (and rendered back
// to) a thread file. The pseudo-root holds any text preceding the first
// heading in its Body; top-level headings are its children.
//
// Structural mutation — appending nodes, inserting at markers — is guarded by
// a mutex so a streaming transport can insert into a body while the process
// keeps hold of the document. Chains are built before streaming starts;
// structural reads during streaming are the caller's to sequence.
type Document struct {
	mu      sync.Mutex
	root    *Node
	nodes   map[uuid.UUID]*Node
	markers map[string]*Marker
}

func New() *Document {
	return &Document{
		root:    newNode("", ""),
		nodes:   map[uuid.UUID]*Node{},
		markers: map[string]*Marker{},
	}
}

// Root returns the document's pseudo-root. It never corresponds to a heading
// line in the file.
func (d *Document) Root() *Node {
	return d.root
}

// TopLevel returns the document's top-level nodes in order.
func (d *Document) TopLevel() []*Node {
	return d.root.Children
}

// Contains reports whether n is a node of this document. The pseudo-root
// does not count.
func (d *Document) Contains(n *Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.containsLocked(n)
}

func (d *Document) containsLocked(n *Node) bool {
	if n == nil {
		return false
	}
	return d.nodes[n.ID] == n
}

// attach links child under parent and registers it in the node index. The
// caller holds the lock or owns the document exclusively, as the parser does.
func (d *Document) attach(parent, child *Node) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	d.nodes[child.ID] = child
}

// AppendChild appends a new node as the last child of parent and returns it.
// Append only; nothing is ever inserted mid-tree.
func (d *Document) AppendChild(parent *Node, heading, body string) (*Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if parent == nil {
		return nil, errors.New("cannot append to a nil parent")
	}
	if parent != d.root && !d.containsLocked(parent) {
		return nil, errors.Errorf("parent %s is not part of this document", parent.ID)
	}
	child := newNode(heading, body)
	d.attach(parent, child)
	return child, nil
}

// AppendTopLevel appends a new top-level node to the document.
func (d *Document) AppendTopLevel(heading, body string) *Node {
	n, _ := d.AppendChild(d.root, heading, body)
	return n
}

// NodeByID looks a node up by its identifier.
func (d *Document) NodeByID(id uuid.UUID) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	return n, ok
}

// NodeAtPath resolves a dotted 1-based outline path such as "2.1" (second
// top-level node, first child) to a node.
func (d *Document) NodeAtPath(path string) (*Node, error) {
	cur := d.root
	for _, seg := range strings.Split(path, ".") {
		idx, err := strconv.Atoi(strings.TrimSpace(seg))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid outline path %q", path)
		}
		if idx < 1 || idx > len(cur.Children) {
			return nil, errors.Errorf("outline path %q does not resolve to a node", path)
		}
		cur = cur.Children[idx-1]
	}
	if cur == d.root {
		return nil, errors.Errorf("outline path %q does not resolve to a node", path)
	}
	return cur, nil
}

// OutlinePath returns the dotted 1-based outline path of n, e.g. "2.1".
// Empty for the pseudo-root and for detached nodes.
func (d *Document) OutlinePath(n *Node) string {
	var segs []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		idx := 0
		for i, sibling := range cur.Parent.Children {
			if sibling == cur {
				idx = i + 1
				break
			}
		}
		segs = append([]string{strconv.Itoa(idx)}, segs...)
	}
	return strings.Join(segs, ".")
}

// LastNode returns the last node in document order: the last descendant of
// the last top-level node. Nil on a document without headings.
func (d *Document) LastNode() *Node {
	if len(d.root.Children) == 0 {
		return nil
	}
	return d.root.Children[len(d.root.Children)-1].LastDescendant()
}

// Walk visits every node of the document in document order, depth first,
// skipping the pseudo-root. Returning false from f stops the walk.
func (d *Document) Walk(f func(n *Node) bool) {
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if !f(n) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	for _, n := range d.root.Children {
		if !walk(n) {
			return
		}
	}
}
