package transport

import (
	"testing"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https remote", url: "https://api.example.com/v1"},
		{name: "http loopback", url: "http://127.0.0.1:8080/v1"},
		{name: "http localhost", url: "http://localhost:11434"},
		{name: "http private network", url: "http://192.168.1.20:11434"},
		{name: "http remote", url: "http://api.example.com/v1", wantErr: "only local hosts may skip TLS"},
		{name: "bad scheme", url: "ftp://api.example.com", wantErr: "unsupported endpoint scheme"},
		{name: "no host", url: "https:///v1", wantErr: "has no host"},
		{name: "unspecified address", url: "https://0.0.0.0/v1", wantErr: "unroutable endpoint address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpoint(tt.url)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEngineConstructorsRejectBadEndpoints(t *testing.T) {
	s := config.Default()
	s.OpenAI.APIKey = "test-key"
	s.OpenAI.BaseURL = "http://api.example.com/v1"
	_, err := NewOpenAIEngine(s)
	require.Error(t, err)
	assert.True(t, thread.IsConfiguration(err))
	assert.Contains(t, err.Error(), "only local hosts may skip TLS")

	s = config.Default()
	s.Claude.APIKey = "test-key"
	s.Claude.BaseURL = "ftp://claude.example.com"
	_, err = NewClaudeEngine(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported endpoint scheme")

	s = config.Default()
	s.Ollama.Host = "http://ollama.example.com"
	_, err = NewOllamaEngine(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only local hosts may skip TLS")
}
