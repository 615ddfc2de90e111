package document

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Render writes the document back out as a thread file. Headings are emitted
// from tree depth, bodies verbatim; a body missing its final newline gets one
// so the next heading starts on its own line.
func (d *Document) Render(w io.Writer) error {
	if err := writeBody(w, d.root.Body); err != nil {
		return err
	}
	for _, n := range d.root.Children {
		if err := renderNode(w, n, 1); err != nil {
			return err
		}
	}
	return nil
}

// String renders the document to a string.
func (d *Document) String() string {
	var sb strings.Builder
	_ = d.Render(&sb)
	return sb.String()
}

func renderNode(w io.Writer, n *Node, depth int) error {
	if _, err := io.WriteString(w, strings.Repeat("*", depth)+" "+n.Heading+"\n"); err != nil {
		return errors.Wrap(err, "writing heading line")
	}
	if err := writeBody(w, n.Body); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := renderNode(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func writeBody(w io.Writer, body string) error {
	if body == "" {
		return nil
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	_, err := io.WriteString(w, body)
	return errors.Wrap(err, "writing body region")
}
