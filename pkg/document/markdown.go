package document

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromMarkdown converts a markdown outline into a thread document: ATX
// headings become nodes nested by level, everything between two headings
// becomes the body of the heading above it. Text before the first heading
// lands in the document preamble.
//
// Bodies get the structural blank line every thread node carries, so entries
// extracted from an imported document come back intact.
func FromMarkdown(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading markdown source")
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := New()

	type stackEntry struct {
		node  *Node
		level int
	}
	stack := []stackEntry{{node: doc.root, level: 0}}

	var blocks []string
	flush := func() {
		top := stack[len(stack)-1].node
		body := strings.Join(blocks, "\n\n")
		blocks = nil
		if body == "" {
			return
		}
		if top == doc.root {
			top.Body = body + "\n"
			return
		}
		top.Body = "\n" + body + "\n"
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch block := n.(type) {
		case *ast.Heading:
			flush()
			for len(stack) > 1 && stack[len(stack)-1].level >= block.Level {
				stack = stack[:len(stack)-1]
			}
			node := newNode(string(block.Text(src)), "")
			doc.attach(stack[len(stack)-1].node, node)
			stack = append(stack, stackEntry{node: node, level: block.Level})
		default:
			if t := blockText(n, src); t != "" {
				blocks = append(blocks, t)
			}
		}
	}
	flush()

	return doc, nil
}

// blockText returns the raw source lines of a block node, fenced code block
// fences excluded by goldmark's segmentation.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				buf.WriteString(t)
				buf.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}
