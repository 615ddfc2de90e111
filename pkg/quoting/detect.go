package quoting

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

var markupNames = map[string]bool{
	"html":     true,
	"xhtml":    true,
	"xml":      true,
	"svg":      true,
	"markdown": true,
	"md":       true,
	"mkd":      true,
	"org":      true,
	"rst":      true,
	"tex":      true,
	"latex":    true,
}

var proseNames = map[string]bool{
	"plaintext":    true,
	"text":         true,
	"plain":        true,
	"no-highlight": true,
}

// DetectSource classifies a quoted region by filename, falling back to
// content analysis. Unrecognized content is treated as prose and will not be
// fenced.
func DetectSource(filename, text string) SourceContext {
	var lexer chroma.Lexer
	if filename != "" {
		lexer = lexers.Match(filename)
	}
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return SourceContext{Kind: Prose}
	}
	return contextForLexer(lexer)
}

// ForLanguage builds a source context for an explicitly requested language.
// Names chroma knows are normalized through its lexer registry; anything else
// is taken at face value as a programming language.
func ForLanguage(name string) SourceContext {
	if name == "" {
		return SourceContext{Kind: Prose}
	}
	if lexer := lexers.Get(name); lexer != nil {
		return contextForLexer(lexer)
	}
	return SourceContext{Name: strings.ToLower(name), Kind: Programming}
}

func contextForLexer(lexer chroma.Lexer) SourceContext {
	cfg := lexer.Config()
	name := strings.ToLower(cfg.Name)
	if len(cfg.Aliases) > 0 {
		name = cfg.Aliases[0]
	}

	switch {
	case proseNames[name] || proseNames[strings.ToLower(cfg.Name)]:
		return SourceContext{Kind: Prose}
	case markupNames[name] || markupNames[strings.ToLower(cfg.Name)]:
		return SourceContext{Name: name, Kind: Markup}
	default:
		return SourceContext{Name: name, Kind: Programming}
	}
}
