package document

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024

// Parse reads a thread file into a document. A heading line is a run of stars
// followed by a single space; the star count is the heading's depth. Every
// other line belongs to the body region of the most recent heading, or to the
// document preamble before the first heading. Body regions are kept verbatim,
// metadata drawers included, so rendering reproduces the file.
func Parse(r io.Reader) (*Document, error) {
	doc := New()
	stack := []*Node{doc.root}
	cur := doc.root
	var body strings.Builder

	flush := func() {
		cur.Body = body.String()
		body.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		depth, title, ok := parseHeadingLine(line)
		if !ok {
			body.WriteString(line)
			body.WriteByte('\n')
			continue
		}
		flush()
		for len(stack) > depth {
			stack = stack[:len(stack)-1]
		}
		node := newNode(title, "")
		doc.attach(stack[len(stack)-1], node)
		stack = append(stack, node)
		cur = node
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading thread document")
	}
	flush()

	return doc, nil
}

// ParseString parses a thread document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// parseHeadingLine splits a heading line into star depth and raw title. A run
// of stars not followed by a space is body text, not a heading.
func parseHeadingLine(line string) (int, string, bool) {
	n := 0
	for n < len(line) && line[n] == '*' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0, "", false
	}
	return n, line[n+1:], true
}
