package transport

import (
	"context"
	"io"
	"time"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine streams chat completions from the OpenAI API (or any
// API-compatible endpoint reachable through Settings.OpenAI.BaseURL).
type OpenAIEngine struct {
	settings *config.Settings
	config   *Config
	client   *go_openai.Client
}

// NewOpenAIEngine creates a new OpenAI engine with the given settings and options.
func NewOpenAIEngine(settings *config.Settings, options ...Option) (*OpenAIEngine, error) {
	cfg := NewConfig()
	if err := ApplyOptions(cfg, options...); err != nil {
		return nil, err
	}
	if settings.OpenAI.APIKey == "" {
		return nil, &thread.ConfigurationError{Err: errors.New("no API key for openai")}
	}

	clientConfig := go_openai.DefaultConfig(settings.OpenAI.APIKey)
	if settings.OpenAI.BaseURL != "" {
		if err := ValidateEndpoint(settings.OpenAI.BaseURL); err != nil {
			return nil, &thread.ConfigurationError{Err: err}
		}
		clientConfig.BaseURL = settings.OpenAI.BaseURL
	}

	return &OpenAIEngine{
		settings: settings,
		config:   cfg,
		client:   go_openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (e *OpenAIEngine) Send(
	ctx context.Context,
	messages conversation.Conversation,
	marker *document.Marker,
) error {
	req := makeChatCompletionRequest(e.settings, messages)

	metadata := events.EventMetadata{
		ID:       uuid.New(),
		ThreadID: e.config.ThreadID,
		NodeID:   marker.Node().ID.String(),
		Model:    req.Model,
	}

	log.Debug().
		Str("event_id", metadata.ID.String()).
		Int("num_messages", len(req.Messages)).
		Str("model", req.Model).
		Msg("openai starting streaming request")
	e.publishEvent(events.NewStartEvent(metadata))

	started := time.Now()
	stream, err := e.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("openai streaming request failed")
		e.publishEvent(events.NewErrorEvent(metadata, err))
		return errors.Wrap(err, "creating chat completion stream")
	}
	defer stream.Close()

	message := ""
	chunkCount := 0

	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("chunks_received", chunkCount).Msg("openai streaming cancelled by context")
			e.publishEvent(events.NewInterruptEvent(metadata, message))
			return ctx.Err()

		default:
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				log.Debug().Int("chunks_received", chunkCount).Msg("openai stream completed")
				goto streamingComplete
			}
			if err != nil {
				log.Error().Err(err).Int("chunks_received", chunkCount).Msg("openai stream receive failed")
				e.publishEvent(events.NewErrorEvent(metadata, err))
				return errors.Wrap(err, "receiving stream chunk")
			}
			chunkCount++

			if len(response.Choices) == 0 {
				continue
			}
			choice := response.Choices[0]
			if choice.FinishReason != "" {
				metadata.StopReason = string(choice.FinishReason)
			}

			delta := choice.Delta.Content
			if delta == "" {
				continue
			}
			if err := marker.Insert(delta); err != nil {
				e.publishEvent(events.NewErrorEvent(metadata, err))
				return errors.Wrap(err, "inserting delta at marker")
			}
			message += delta

			log.Trace().Int("chunk", chunkCount).Str("delta", delta).Int("total_length", len(message)).Msg("openai received chunk")
			e.publishEvent(events.NewPartialCompletionEvent(metadata, delta, message))
		}
	}

streamingComplete:

	metadata.DurationMs = time.Since(started).Milliseconds()

	log.Debug().
		Str("event_id", metadata.ID.String()).
		Int("final_length", len(message)).
		Msg("openai publishing final event")
	e.publishEvent(events.NewFinalEvent(metadata, message))

	return nil
}

// makeChatCompletionRequest builds a streaming chat request from settings and
// a conversation.
func makeChatCompletionRequest(s *config.Settings, messages conversation.Conversation) go_openai.ChatCompletionRequest {
	msgs := make([]go_openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := go_openai.ChatMessageRoleUser
		switch m.Role {
		case conversation.RoleSystem:
			role = go_openai.ChatMessageRoleSystem
		case conversation.RoleAssistant:
			role = go_openai.ChatMessageRoleAssistant
		case conversation.RoleUser:
			role = go_openai.ChatMessageRoleUser
		}
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	req := go_openai.ChatCompletionRequest{
		Model:    s.OpenAI.Model,
		Messages: msgs,
		Stream:   true,
	}
	if s.Temperature != nil {
		req.Temperature = float32(*s.Temperature)
	}
	if s.MaxTokens != nil {
		req.MaxTokens = *s.MaxTokens
	}

	return req
}

// publishEvent publishes an event to all configured sinks.
func (e *OpenAIEngine) publishEvent(event events.Event) {
	for _, sink := range e.config.EventSinks {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event to sink")
		}
	}
}

var _ Engine = (*OpenAIEngine)(nil)
