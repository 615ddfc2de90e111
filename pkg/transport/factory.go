package transport

import (
	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/pkg/errors"
)

// FromSettings builds the engine selected by Settings.Provider.
func FromSettings(settings *config.Settings, options ...Option) (Engine, error) {
	switch settings.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIEngine(settings, options...)

	case config.ProviderClaude:
		return NewClaudeEngine(settings, options...)

	case config.ProviderOllama:
		return NewOllamaEngine(settings, options...)

	default:
		return nil, &thread.ConfigurationError{Err: errors.Errorf("unknown provider %q", settings.Provider)}
	}
}
