package document

import (
	"github.com/lithammer/shortuuid/v3"
	"github.com/pkg/errors"
)

// Marker is a stable position inside a node's body. Inserting text at or
// before a marker rebases it forward, so a streaming transport can keep
// appending at the marker's live position while the surrounding document
// grows.
//
// Markers are issued and owned by a document and become invalid once
// released.
type Marker struct {
	id     string
	doc    *Document
	node   *Node
	offset int
}

// ID returns the marker's identifier.
func (m *Marker) ID() string {
	return m.id
}

// Node returns the node the marker points into.
func (m *Marker) Node() *Node {
	return m.node
}

// Offset returns the marker's current byte offset into the node's body.
func (m *Marker) Offset() int {
	m.doc.mu.Lock()
	defer m.doc.mu.Unlock()
	return m.offset
}

// Insert splices text into the marker's node at the marker's live position
// and advances the marker past it, so successive inserts append in order.
func (m *Marker) Insert(text string) error {
	return m.doc.insertAt(m, text)
}

// MarkerAt issues a marker at the given byte offset into n's body.
func (d *Document) MarkerAt(n *Node, offset int) (*Marker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.markerAtLocked(n, offset)
}

// MarkerAtBodyEnd issues a marker at the current end of n's body.
func (d *Document) MarkerAtBodyEnd(n *Node) (*Marker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n == nil {
		return nil, errors.New("cannot place a marker on a nil node")
	}
	return d.markerAtLocked(n, len(n.Body))
}

func (d *Document) markerAtLocked(n *Node, offset int) (*Marker, error) {
	if !d.containsLocked(n) {
		return nil, errors.New("cannot place a marker outside the document")
	}
	if offset < 0 || offset > len(n.Body) {
		return nil, errors.Errorf("marker offset %d out of range for body of %d bytes", offset, len(n.Body))
	}
	m := &Marker{
		id:     shortuuid.New(),
		doc:    d,
		node:   n,
		offset: offset,
	}
	d.markers[m.id] = m
	return m, nil
}

// insertAt performs the splice for Marker.Insert under the document lock and
// rebases every marker on the same node sitting at or after the insertion
// point. The inserting marker rebases too, which is what turns repeated
// inserts into appends.
func (d *Document) insertAt(m *Marker, text string) error {
	if text == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.markers[m.id] != m {
		return errors.New("marker has been released")
	}
	n := m.node
	at := m.offset
	n.Body = n.Body[:at] + text + n.Body[at:]
	for _, other := range d.markers {
		if other.node == n && other.offset >= at {
			other.offset += len(text)
		}
	}
	return nil
}

// ReleaseMarker invalidates a marker. Inserting through a released marker
// fails.
func (d *Document) ReleaseMarker(m *Marker) {
	if m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.markers, m.id)
}
