package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/google/uuid"
	"github.com/jmorganca/ollama/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// OllamaEngine streams replies from a local or remote ollama server.
type OllamaEngine struct {
	settings *config.Settings
	config   *Config
	client   *api.Client
}

// NewOllamaEngine creates a new ollama engine with the given settings and
// options. When no host is configured the client is built from the
// environment (OLLAMA_HOST).
func NewOllamaEngine(settings *config.Settings, options ...Option) (*OllamaEngine, error) {
	cfg := NewConfig()
	if err := ApplyOptions(cfg, options...); err != nil {
		return nil, err
	}

	var client *api.Client
	if settings.Ollama.Host != "" {
		if err := ValidateEndpoint(settings.Ollama.Host); err != nil {
			return nil, &thread.ConfigurationError{Err: err}
		}
		base, err := url.Parse(settings.Ollama.Host)
		if err != nil {
			return nil, &thread.ConfigurationError{Err: errors.Wrap(err, "parsing ollama host")}
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, &thread.ConfigurationError{Err: errors.Wrap(err, "creating ollama client")}
		}
	}

	return &OllamaEngine{
		settings: settings,
		config:   cfg,
		client:   client,
	}, nil
}

func (e *OllamaEngine) Send(
	ctx context.Context,
	messages conversation.Conversation,
	marker *document.Marker,
) error {
	ollamaMessages := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		ollamaMessages = append(ollamaMessages, api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream := true
	req := &api.ChatRequest{
		Model:    e.settings.Ollama.Model,
		Messages: ollamaMessages,
		Stream:   &stream,
	}
	opts := map[string]interface{}{}
	if e.settings.Temperature != nil {
		opts["temperature"] = *e.settings.Temperature
	}
	if e.settings.MaxTokens != nil {
		opts["num_predict"] = *e.settings.MaxTokens
	}
	if len(opts) > 0 {
		req.Options = opts
	}

	metadata := events.EventMetadata{
		ID:       uuid.New(),
		ThreadID: e.config.ThreadID,
		NodeID:   marker.Node().ID.String(),
		Model:    req.Model,
	}

	log.Debug().
		Str("event_id", metadata.ID.String()).
		Int("num_messages", len(ollamaMessages)).
		Str("model", req.Model).
		Msg("ollama starting streaming request")
	e.publishEvent(events.NewStartEvent(metadata))

	started := time.Now()
	message := ""
	var usage events.Usage

	err := e.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Done {
			usage.InputTokens = resp.PromptEvalCount
			usage.OutputTokens = resp.EvalCount
		}
		if resp.Message.Content == "" {
			return nil
		}

		delta := resp.Message.Content
		if err := marker.Insert(delta); err != nil {
			return errors.Wrap(err, "inserting delta at marker")
		}
		message += delta
		e.publishEvent(events.NewPartialCompletionEvent(metadata, delta, message))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Debug().Msg("ollama streaming cancelled by context")
			e.publishEvent(events.NewInterruptEvent(metadata, message))
			return err
		}
		log.Error().Err(err).Msg("ollama chat failed")
		e.publishEvent(events.NewErrorEvent(metadata, err))
		return errors.Wrap(err, "ollama chat")
	}

	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		metadata.Usage = &usage
	}
	metadata.DurationMs = time.Since(started).Milliseconds()

	log.Debug().
		Str("event_id", metadata.ID.String()).
		Int("final_length", len(message)).
		Msg("ollama publishing final event")
	e.publishEvent(events.NewFinalEvent(metadata, message))

	return nil
}

// publishEvent publishes an event to all configured sinks.
func (e *OllamaEngine) publishEvent(event events.Event) {
	for _, sink := range e.config.EventSinks {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event to sink")
		}
	}
}

var _ Engine = (*OllamaEngine)(nil)
