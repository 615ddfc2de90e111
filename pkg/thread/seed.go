package thread

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
)

// Seed describes the optional opening content of a new thread: an already
// quoted region, a template rendered into introductory text, or both.
type Seed struct {
	// Region is quoted text that already went through the quoting pipeline.
	Region string

	// Template is a text/template source rendered with sprig functions plus
	// a "slug" helper. The rendered text precedes the region.
	Template string

	// Data is the template's dot.
	Data map[string]interface{}
}

// Render produces the body of a thread's opening node. The structural blank
// line comes first so entry extraction sees only the seeded content.
func (s Seed) Render() (string, error) {
	body := ""
	if s.Template != "" {
		t, err := template.New("seed").
			Funcs(sprig.TxtFuncMap()).
			Funcs(template.FuncMap{"slug": strcase.ToKebab}).
			Parse(s.Template)
		if err != nil {
			return "", errors.Wrap(err, "parsing seed template")
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, s.Data); err != nil {
			return "", errors.Wrap(err, "rendering seed template")
		}
		body = buf.String()
	}

	if s.Region != "" {
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		body += s.Region
	}

	if body == "" {
		return "\n", nil
	}
	return "\n" + body, nil
}
