package transport

import (
	"context"

	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/events"
)

// Engine streams a model reply for a conversation into a document through a
// marker. Implementations insert each text delta at the marker as it arrives
// and publish chat events to all registered sinks. Send blocks until the
// reply is complete, the context is cancelled, or the provider fails.
type Engine interface {
	Send(ctx context.Context, messages conversation.Conversation, marker *document.Marker) error
}

// Option is a functional option for configuring engines.
type Option func(*Config) error

// Config holds configuration shared by all engines.
type Config struct {
	// EventSinks holds all registered event sinks. Events are published to
	// all sinks in the order they were added.
	EventSinks []events.EventSink

	// ThreadID is carried into event metadata so consumers can tell
	// concurrent responses apart.
	ThreadID string
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		EventSinks: make([]events.EventSink, 0),
	}
}

// WithSink adds an EventSink to the configuration. Multiple sinks can be
// added and events will be published to all of them.
func WithSink(sink events.EventSink) Option {
	return func(c *Config) error {
		c.EventSinks = append(c.EventSinks, sink)
		return nil
	}
}

// WithThreadID sets the thread identifier carried in event metadata.
func WithThreadID(id string) Option {
	return func(c *Config) error {
		c.ThreadID = id
		return nil
	}
}

// ApplyOptions applies a set of options to a configuration.
func ApplyOptions(config *Config, options ...Option) error {
	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}
	return nil
}
