package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/go-go-golems/cricket/pkg/conversation"
)

// DefaultPreamble seeds conversations when no preamble is configured.
const DefaultPreamble = "You are a helpful assistant. Answer as concisely as possible."

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

type OpenAISettings struct {
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Model   string `yaml:"model,omitempty" mapstructure:"model"`
}

type ClaudeSettings struct {
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIVersion string `yaml:"api_version,omitempty" mapstructure:"api_version"`
	Model      string `yaml:"model,omitempty" mapstructure:"model"`
	MaxTokens  int    `yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

type OllamaSettings struct {
	Host  string `yaml:"host,omitempty" mapstructure:"host"`
	Model string `yaml:"model,omitempty" mapstructure:"model"`
}

// Settings is the process configuration: role names and preamble for message
// assembly, thread storage, the region-quoting filter chain, and one block
// per backend. Values are read at call time and threaded through explicitly;
// use Clone before mutating a shared instance.
type Settings struct {
	UserName   string `yaml:"user-name" mapstructure:"user-name"`
	AIName     string `yaml:"ai-name" mapstructure:"ai-name"`
	Preamble   string `yaml:"preamble" mapstructure:"preamble"`
	StorageDir string `yaml:"storage-dir" mapstructure:"storage-dir"`
	Provider   string `yaml:"provider" mapstructure:"provider"`

	Temperature *float64 `yaml:"temperature,omitempty" mapstructure:"temperature"`
	MaxTokens   *int     `yaml:"max-tokens,omitempty" mapstructure:"max-tokens"`

	// RegionFilters names the quoting transforms applied, in order, to a
	// selected region before it seeds a thread.
	RegionFilters []string `yaml:"region-filters,omitempty" mapstructure:"region-filters"`

	OpenAI OpenAISettings `yaml:"openai,omitempty" mapstructure:"openai"`
	Claude ClaudeSettings `yaml:"claude,omitempty" mapstructure:"claude"`
	Ollama OllamaSettings `yaml:"ollama,omitempty" mapstructure:"ollama"`
}

func Default() *Settings {
	return &Settings{
		UserName:   "User",
		AIName:     "AI",
		Preamble:   DefaultPreamble,
		StorageDir: "~/.cricket/threads",
		Provider:   ProviderOpenAI,
		OpenAI: OpenAISettings{
			Model: "gpt-4o-mini",
		},
		Claude: ClaudeSettings{
			Model:     "claude-3-5-sonnet-20241022",
			MaxTokens: 4096,
		},
		Ollama: OllamaSettings{
			Model: "llama3",
		},
	}
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// Role extracts the role configuration message assembly works from.
func (s *Settings) Role() conversation.RoleConfig {
	return conversation.RoleConfig{
		UserName: s.UserName,
		AIName:   s.AIName,
		Preamble: s.Preamble,
	}
}

// Validate checks the parts every command depends on. Backend credentials
// are checked by the engine that needs them.
func (s *Settings) Validate() error {
	if s.UserName == "" {
		return errors.New("user-name must not be empty")
	}
	if s.AIName == "" {
		return errors.New("ai-name must not be empty")
	}
	if s.StorageDir == "" {
		return errors.New("storage-dir must not be empty")
	}
	switch s.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderOllama:
	default:
		return errors.Errorf("unknown provider %q (want %s, %s or %s)",
			s.Provider, ProviderOpenAI, ProviderClaude, ProviderOllama)
	}
	return nil
}

// Load reads settings from the given config file, or from
// ~/.config/cricket/config.yaml when configFile is empty, applying CRICKET_*
// environment overrides on top of defaults. A missing config file is fine;
// defaults and environment carry the day.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "cricket"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CRICKET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	s := Default()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		s.OpenAI.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		s.Claude.APIKey = key
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configFile == "" && errors.As(err, &notFound):
			log.Debug().Msg("no config file found, using defaults")
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("loaded config file")
	}

	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}

	dir, err := ExpandHome(s.StorageDir)
	if err != nil {
		return nil, err
	}
	s.StorageDir = dir

	return s, nil
}

// ExpandHome resolves a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
