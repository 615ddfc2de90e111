package transport

import (
	"context"
	"time"

	"github.com/go-go-golems/cricket/pkg/config"
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/go-go-golems/cricket/pkg/transport/claude"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ClaudeEngine streams replies from the Anthropic Messages API.
type ClaudeEngine struct {
	settings *config.Settings
	config   *Config
	client   *claude.Client
}

// NewClaudeEngine creates a new Claude engine with the given settings and options.
func NewClaudeEngine(settings *config.Settings, options ...Option) (*ClaudeEngine, error) {
	cfg := NewConfig()
	if err := ApplyOptions(cfg, options...); err != nil {
		return nil, err
	}
	if settings.Claude.APIKey == "" {
		return nil, &thread.ConfigurationError{Err: errors.New("no API key for claude")}
	}
	if settings.Claude.BaseURL != "" {
		if err := ValidateEndpoint(settings.Claude.BaseURL); err != nil {
			return nil, &thread.ConfigurationError{Err: err}
		}
	}

	return &ClaudeEngine{
		settings: settings,
		config:   cfg,
		client:   claude.NewClient(settings.Claude.APIKey, settings.Claude.BaseURL, settings.Claude.APIVersion),
	}, nil
}

func (e *ClaudeEngine) Send(
	ctx context.Context,
	messages conversation.Conversation,
	marker *document.Marker,
) error {
	req := makeMessageRequest(e.settings, messages)

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
		Msg("claude starting streaming request")
	e.publishEvent(events.NewStartEvent(metadata))

	started := time.Now()
	eventCh, err := e.client.StreamMessage(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("claude streaming request failed")
		e.publishEvent(events.NewErrorEvent(metadata, err))
		return errors.Wrap(err, "starting message stream")
	}

	message := ""
	var usage events.Usage

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("claude streaming cancelled by context")
			e.publishEvent(events.NewInterruptEvent(metadata, message))
			return ctx.Err()

		case event, ok := <-eventCh:
			if !ok {
				log.Debug().Int("final_length", len(message)).Msg("claude streaming channel closed")
				goto streamingComplete
			}

			switch event.Type {
			case claude.MessageStartType:
				if event.Message != nil {
					usage.InputTokens = event.Message.Usage.InputTokens
				}

			case claude.ContentBlockDeltaType:
				if event.Delta == nil || event.Delta.Type != claude.TextDeltaType || event.Delta.Text == "" {
					continue
				}
				delta := event.Delta.Text
				if err := marker.Insert(delta); err != nil {
					e.publishEvent(events.NewErrorEvent(metadata, err))
					return errors.Wrap(err, "inserting delta at marker")
				}
				message += delta
				e.publishEvent(events.NewPartialCompletionEvent(metadata, delta, message))

			case claude.MessageDeltaType:
				if event.Delta != nil && event.Delta.StopReason != "" {
					metadata.StopReason = event.Delta.StopReason
				}
				if event.Usage != nil {
					usage.OutputTokens = event.Usage.OutputTokens
				}

			case claude.ErrorType:
				err := errors.New("claude streaming error")
				if event.Error != nil {
					err = errors.New(event.Error.Message)
				}
				log.Error().Err(err).Msg("claude stream reported error")
				e.publishEvent(events.NewErrorEvent(metadata, err))
				return err

			case claude.PingType, claude.ContentBlockStartType, claude.ContentBlockStopType, claude.MessageStopType:
				// nothing to do
			}
		}
	}

streamingComplete:

	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		metadata.Usage = &usage
	}
	metadata.DurationMs = time.Since(started).Milliseconds()

	log.Debug().
		Str("event_id", metadata.ID.String()).
		Int("final_length", len(message)).
		Msg("claude publishing final event")
	e.publishEvent(events.NewFinalEvent(metadata, message))

	return nil
}

// makeMessageRequest builds a Claude MessageRequest from settings and a
// conversation. The system message moves to the top-level system field, and
// consecutive turns with the same role are merged since the messages
// endpoint rejects them.
func makeMessageRequest(s *config.Settings, messages conversation.Conversation) *claude.MessageRequest {
	msgs := []claude.Message{}
	system := ""
	for _, m := range messages {
		if m.Role == conversation.RoleSystem {
			system = m.Content
			continue
		}
		role := string(conversation.RoleUser)
		if m.Role == conversation.RoleAssistant {
			role = string(conversation.RoleAssistant)
		}
		if len(msgs) > 0 && msgs[len(msgs)-1].Role == role {
			msgs[len(msgs)-1].Content += "\n\n" + m.Content
			continue
		}
		msgs = append(msgs, claude.Message{Role: role, Content: m.Content})
	}

	maxTokens := s.Claude.MaxTokens
	if s.MaxTokens != nil && *s.MaxTokens > 0 {
		maxTokens = *s.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	req := &claude.MessageRequest{
		Model:     s.Claude.Model,
		Messages:  msgs,
		MaxTokens: maxTokens,
		Stream:    true,
		System:    system,
	}
	if s.Temperature != nil {
		req.Temperature = s.Temperature
	}

	return req
}

// publishEvent publishes an event to all configured sinks.
func (e *ClaudeEngine) publishEvent(event events.Event) {
	for _, sink := range e.config.EventSinks {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event to sink")
		}
	}
}

var _ Engine = (*ClaudeEngine)(nil)
