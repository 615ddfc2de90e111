package quoting

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Kind classifies the content of a quoted region.
type Kind int

const (
	Prose Kind = iota
	Programming
	Markup
)

func (k Kind) String() string {
	switch k {
	case Programming:
		return "programming"
	case Markup:
		return "markup"
	default:
		return "prose"
	}
}

// SourceContext describes where a quoted region came from: the short language
// name used for fence tags and the kind of content it holds.
type SourceContext struct {
	Name string
	Kind Kind
}

// Transform rewrites a quoted region. Transforms are pure: same input, same
// output, no document access.
type Transform func(text string, sc SourceContext) string

// Pipeline is an ordered list of transforms applied left to right.
type Pipeline []Transform

// Apply runs the pipeline over text.
func (p Pipeline) Apply(text string, sc SourceContext) string {
	for _, transform := range p {
		text = transform(text, sc)
	}
	return text
}

// Default returns the standard quoting pipeline. Newline normalization runs
// before fencing so the closing fence lands on its own line.
func Default() Pipeline {
	return Pipeline{EnsureTrailingNewline, EncloseInCodeBlock}
}

// EnsureTrailingNewline appends "\n" iff text does not already end with one.
func EnsureTrailingNewline(text string, _ SourceContext) string {
	if strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

// EncloseInCodeBlock wraps programming and markup regions in a fenced code
// block tagged with the source's short name. Prose passes through unchanged.
func EncloseInCodeBlock(text string, sc SourceContext) string {
	if sc.Kind != Programming && sc.Kind != Markup {
		return text
	}
	return "```" + sc.Name + "\n" + text + "```\n"
}

// HTMLToMarkdown converts regions clipped from web pages into markdown. Other
// sources pass through unchanged, as does HTML the converter rejects.
func HTMLToMarkdown(text string, sc SourceContext) string {
	if !strings.EqualFold(sc.Name, "html") {
		return text
	}
	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		log.Warn().Err(err).Msg("html conversion failed, keeping region verbatim")
		return text
	}
	return markdown
}

var transformsByName = map[string]Transform{
	"ensure-trailing-newline": EnsureTrailingNewline,
	"enclose-in-code-block":   EncloseInCodeBlock,
	"html-to-markdown":        HTMLToMarkdown,
}

// PipelineFromNames builds a pipeline from configured transform names, in the
// order given. An empty list means the default pipeline.
func PipelineFromNames(names []string) (Pipeline, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	pipeline := make(Pipeline, 0, len(names))
	for _, name := range names {
		transform, ok := transformsByName[name]
		if !ok {
			return nil, errors.Errorf("unknown region filter %q", name)
		}
		pipeline = append(pipeline, transform)
	}
	return pipeline, nil
}
