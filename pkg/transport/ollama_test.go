package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/jmorganca/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaChunk(content string, done bool, extra string) string {
	return fmt.Sprintf(
		`{"model":"llama3","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":%q},"done":%v%s}`+"\n",
		content, done, extra,
	)
}

func TestOllamaEngineStreamsIntoMarker(t *testing.T) {
	var gotReq api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_, _ = fmt.Fprint(w, ollamaChunk("Hel", false, ""))
		_, _ = fmt.Fprint(w, ollamaChunk("lo", false, ""))
		_, _ = fmt.Fprint(w, ollamaChunk("", true, `,"prompt_eval_count":10,"eval_count":2`))
	}))
	defer srv.Close()

	settings := config.Default()
	settings.Provider = config.ProviderOllama
	settings.Ollama.Host = srv.URL
	settings.Ollama.Model = "llama3"

	_, node, marker, err := responseTarget()
	require.NoError(t, err)

	sink := &collectSink{}
	engine, err := NewOllamaEngine(settings, WithSink(sink))
	require.NoError(t, err)

	messages := conversation.Conversation{
		{Role: conversation.RoleSystem, Content: "Be terse."},
		{Role: conversation.RoleUser, Content: "Say hello."},
	}
	require.NoError(t, engine.Send(context.Background(), messages, marker))

	assert.Equal(t, "\nHello", node.Body)

	assert.Equal(t, "llama3", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)

	types := sink.Types()
	require.Len(t, types, 4)
	assert.Equal(t, events.EventTypeStart, types[0])
	assert.Equal(t, events.EventTypePartialCompletion, types[1])
	assert.Equal(t, events.EventTypePartialCompletion, types[2])
	assert.Equal(t, events.EventTypeFinal, types[3])

	final, ok := sink.Events()[3].(*events.EventFinal)
	require.True(t, ok)
	assert.Equal(t, "Hello", final.Text)
	require.NotNil(t, final.Metadata().Usage)
	assert.Equal(t, 10, final.Metadata().Usage.InputTokens)
	assert.Equal(t, 2, final.Metadata().Usage.OutputTokens)
}

func TestOllamaEngineServerErrorPublishesErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"error":"model not found"}`+"\n")
	}))
	defer srv.Close()

	settings := config.Default()
	settings.Ollama.Host = srv.URL

	_, node, marker, err := responseTarget()
	require.NoError(t, err)

	sink := &collectSink{}
	engine, err := NewOllamaEngine(settings, WithSink(sink))
	require.NoError(t, err)

	err = engine.Send(context.Background(), conversation.Conversation{
		{Role: conversation.RoleUser, Content: "hi"},
	}, marker)
	require.Error(t, err)

	assert.Equal(t, "\n", node.Body)
	types := sink.Types()
	require.Len(t, types, 2)
	assert.Equal(t, events.EventTypeError, types[1])
}

func TestFromSettingsSelectsProvider(t *testing.T) {
	settings := config.Default()
	settings.OpenAI.APIKey = "k"
	settings.Claude.APIKey = "k"
	settings.Ollama.Host = "http://127.0.0.1:11434"

	settings.Provider = config.ProviderOpenAI
	engine, err := FromSettings(settings)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEngine{}, engine)

	settings.Provider = config.ProviderClaude
	engine, err = FromSettings(settings)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeEngine{}, engine)

	settings.Provider = config.ProviderOllama
	engine, err = FromSettings(settings)
	require.NoError(t, err)
	assert.IsType(t, &OllamaEngine{}, engine)

	settings.Provider = "mistral"
	_, err = FromSettings(settings)
	require.Error(t, err)
	assert.True(t, thread.IsConfiguration(err))
}
