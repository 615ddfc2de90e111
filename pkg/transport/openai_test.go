package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIChunk(content string, finishReason string) string {
	finish := "null"
	if finishReason != "" {
		finish = fmt.Sprintf("%q", finishReason)
	}
	return fmt.Sprintf(
		`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%q},"finish_reason":%s}]}`+"\n\n",
		content, finish,
	)
}

func newOpenAIServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			_, _ = fmt.Fprint(w, chunk)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIEngineStreamsIntoMarker(t *testing.T) {
	srv := newOpenAIServer(t, []string{
		openAIChunk("Hello", ""),
		openAIChunk(", world", ""),
		openAIChunk("", "stop"),
	})
	defer srv.Close()

	settings := config.Default()
	settings.OpenAI.APIKey = "test-key"
	settings.OpenAI.BaseURL = srv.URL + "/v1"

	doc, node, marker, err := responseTarget()
	require.NoError(t, err)

	sink := &collectSink{}
	engine, err := NewOpenAIEngine(settings, WithSink(sink), WithThreadID("thread-1"))
	require.NoError(t, err)

	messages := conversation.Conversation{
		{Role: conversation.RoleSystem, Content: "Be terse."},
		{Role: conversation.RoleUser, Content: "Say hello."},
	}
	require.NoError(t, engine.Send(context.Background(), messages, marker))

	assert.Equal(t, "\nHello, world", node.Body)
	doc.ReleaseMarker(marker)

	types := sink.Types()
	require.Len(t, types, 4)
	assert.Equal(t, events.EventTypeStart, types[0])
	assert.Equal(t, events.EventTypePartialCompletion, types[1])
	assert.Equal(t, events.EventTypePartialCompletion, types[2])
	assert.Equal(t, events.EventTypeFinal, types[3])

	collected := sink.Events()
	partial, ok := collected[1].(*events.EventPartialCompletion)
	require.True(t, ok)
	assert.Equal(t, "Hello", partial.Delta)
	assert.Equal(t, "Hello", partial.Completion)

	final, ok := collected[3].(*events.EventFinal)
	require.True(t, ok)
	assert.Equal(t, "Hello, world", final.Text)
	assert.Equal(t, "stop", final.Metadata().StopReason)
	assert.Equal(t, "thread-1", final.Metadata().ThreadID)
	assert.Equal(t, node.ID.String(), final.Metadata().NodeID)
}

func TestOpenAIEngineRequiresAPIKey(t *testing.T) {
	settings := config.Default()
	settings.OpenAI.APIKey = ""

	_, err := NewOpenAIEngine(settings)
	require.Error(t, err)
	assert.True(t, thread.IsConfiguration(err))
}

func TestOpenAIEngineHTTPErrorPublishesErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	settings := config.Default()
	settings.OpenAI.APIKey = "bad-key"
	settings.OpenAI.BaseURL = srv.URL + "/v1"

	_, node, marker, err := responseTarget()
	require.NoError(t, err)

	sink := &collectSink{}
	engine, err := NewOpenAIEngine(settings, WithSink(sink))
	require.NoError(t, err)

	err = engine.Send(context.Background(), conversation.Conversation{
		{Role: conversation.RoleUser, Content: "hi"},
	}, marker)
	require.Error(t, err)

	assert.Equal(t, "\n", node.Body)
	types := sink.Types()
	require.Len(t, types, 2)
	assert.Equal(t, events.EventTypeStart, types[0])
	assert.Equal(t, events.EventTypeError, types[1])
}

func TestMakeChatCompletionRequest(t *testing.T) {
	settings := config.Default()
	settings.OpenAI.Model = "gpt-4o"
	temperature := 0.2
	maxTokens := 256
	settings.Temperature = &temperature
	settings.MaxTokens = &maxTokens

	req := makeChatCompletionRequest(settings, conversation.Conversation{
		{Role: conversation.RoleSystem, Content: "preamble"},
		{Role: conversation.RoleUser, Content: "question"},
		{Role: conversation.RoleAssistant, Content: "answer"},
	})

	assert.Equal(t, "gpt-4o", req.Model)
	assert.True(t, req.Stream)
	assert.InDelta(t, 0.2, float64(req.Temperature), 0.0001)
	assert.Equal(t, 256, req.MaxTokens)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "preamble", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "assistant", req.Messages[2].Role)
}
