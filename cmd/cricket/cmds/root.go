package cmds

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/thread"
)

// RegisterCommands attaches every cricket command to the root.
func RegisterCommands(root *cobra.Command) {
	root.AddCommand(
		NewNewCommand(),
		NewRespondCommand(),
		NewAppendCommand(),
		NewShowCommand(),
		NewListCommand(),
		NewWatchCommand(),
		NewTokensCommand(),
	)
}

// settingsFromCommand loads configuration honoring the root --config flag.
func settingsFromCommand(cmd *cobra.Command) (*config.Settings, error) {
	configFile := ""
	if f := cmd.Flag("config"); f != nil {
		configFile = f.Value.String()
	}

	s, err := config.Load(configFile)
	if err != nil {
		return nil, &thread.ConfigurationError{Err: err}
	}
	if err := s.Validate(); err != nil {
		return nil, &thread.ConfigurationError{Err: err}
	}
	return s, nil
}

// openThread resolves a thread reference and loads it.
func openThread(store *thread.Store, ref string) (*thread.Thread, error) {
	path, err := store.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return store.Load(path)
}

// pickNode selects the node a command operates on: an outline path like
// "2.1", or the last node in the document.
func pickNode(doc *document.Document, ref string) (*document.Node, error) {
	if ref == "" || ref == "last" {
		node := doc.LastNode()
		if node == nil {
			return nil, errors.New("thread has no nodes")
		}
		return node, nil
	}
	return doc.NodeAtPath(ref)
}

// modelName returns the configured model of the active provider.
func modelName(s *config.Settings) string {
	switch s.Provider {
	case config.ProviderClaude:
		return s.Claude.Model
	case config.ProviderOllama:
		return s.Ollama.Model
	default:
		return s.OpenAI.Model
	}
}
