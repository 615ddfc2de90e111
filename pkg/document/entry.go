package document

import (
	"regexp"
	"strings"
)

// Entry is the conversational view of a node: its display heading and its
// body with the structural line and any metadata drawer removed.
type Entry struct {
	Heading string
	Body    string
}

var (
	drawerStartRe = regexp.MustCompile(`^\s*:PROPERTIES:\s*$`)
	drawerEndRe   = regexp.MustCompile(`^\s*:END:\s*$`)
	priorityRe    = regexp.MustCompile(`^\[#[A-Za-z0-9]\]`)
	tagGroupRe    = regexp.MustCompile(`\s+:[A-Za-z0-9_@#%:]+:\s*$`)
)

// headingKeywords are the state keywords stripped from the front of a
// heading. Role headings must never appear here or role mapping breaks.
var headingKeywords = []string{"TODO", "DONE"}

// Extract returns the entry for a node. The body is the node's own region
// with the outermost :PROPERTIES: ... :END: drawer removed when present, then
// exactly one leading line dropped, the structural line editors keep between
// a heading and its content.
func Extract(n *Node) Entry {
	lines := stripDrawer(bodyLines(n.Body))
	if len(lines) > 0 {
		lines = lines[1:]
	}
	return Entry{
		Heading: cleanHeading(n.Heading),
		Body:    strings.Join(lines, "\n"),
	}
}

// stripDrawer removes the span from the first :PROPERTIES: line through the
// last :END: line after it. A start without an end is left untouched.
func stripDrawer(lines []string) []string {
	start := -1
	for i, line := range lines {
		if drawerStartRe.MatchString(line) {
			start = i
			break
		}
	}
	if start == -1 {
		return lines
	}
	end := -1
	for i := len(lines) - 1; i > start; i-- {
		if drawerEndRe.MatchString(lines[i]) {
			end = i
			break
		}
	}
	if end == -1 {
		return lines
	}
	out := make([]string, 0, len(lines)-(end-start+1))
	out = append(out, lines[:start]...)
	out = append(out, lines[end+1:]...)
	return out
}

// cleanHeading strips heading decorations: a leading state keyword, a
// priority cookie, a trailing tag group. What remains is the display title
// used for role classification.
func cleanHeading(h string) string {
	h = strings.TrimSpace(h)
	for _, kw := range headingKeywords {
		if h == kw {
			return ""
		}
		if rest, ok := strings.CutPrefix(h, kw+" "); ok {
			h = strings.TrimSpace(rest)
			break
		}
	}
	if loc := priorityRe.FindStringIndex(h); loc != nil {
		h = strings.TrimSpace(h[loc[1]:])
	}
	if loc := tagGroupRe.FindStringIndex(h); loc != nil {
		h = strings.TrimSpace(h[:loc[0]])
	}
	return h
}
