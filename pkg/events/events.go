package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	EventTypeStart             EventType = "start"
	EventTypePartialCompletion EventType = "partial"
	EventTypeFinal             EventType = "final"
	EventTypeError             EventType = "error"
	EventTypeInterrupt         EventType = "interrupt"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

// Usage is the token accounting reported by a backend, when it reports one.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// EventMetadata travels with every streaming event and correlates it back to
// the response generation that produced it.
type EventMetadata struct {
	ID         uuid.UUID `json:"message_id" yaml:"message_id"`
	ThreadID   string    `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
	NodeID     string    `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Model      string    `json:"model,omitempty" yaml:"model,omitempty"`
	StopReason string    `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty"`
	Usage      *Usage    `json:"usage,omitempty" yaml:"usage,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.ThreadID != "" {
		e.Str("thread_id", em.ThreadID)
	}
	if em.NodeID != "" {
		e.Str("node_id", em.NodeID)
	}
	if em.Model != "" {
		e.Str("model", em.Model)
	}
	if em.StopReason != "" {
		e.Str("stop_reason", em.StopReason)
	}
	if em.Usage != nil {
		e.Int("input_tokens", em.Usage.InputTokens)
		e.Int("output_tokens", em.Usage.OutputTokens)
	}
	if em.DurationMs != 0 {
		e.Int64("duration_ms", em.DurationMs)
	}
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// raw JSON the event was decoded from, set by NewEventFromJSON
	payload []byte
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

func (e *EventImpl) SetPayload(b []byte) {
	e.payload = b
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

var _ Event = &EventImpl{}

// EventStart opens a streamed response, published before the first delta.
type EventStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventStart {
	return &EventStart{
		EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata},
	}
}

var _ Event = &EventStart{}

// EventPartialCompletion carries one streamed fragment. Completion is the
// whole text accumulated so far, Delta just the new part.
type EventPartialCompletion struct {
	EventImpl
	Delta      string `json:"delta"`
	Completion string `json:"completion"`
}

func NewPartialCompletionEvent(metadata EventMetadata, delta string, completion string) *EventPartialCompletion {
	return &EventPartialCompletion{
		EventImpl:  EventImpl{Type_: EventTypePartialCompletion, Metadata_: metadata},
		Delta:      delta,
		Completion: completion,
	}
}

var _ Event = &EventPartialCompletion{}

// EventFinal closes a streamed response; Text is the full generated text.
type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		Text:      text,
	}
}

var _ Event = &EventFinal{}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	return &EventError{
		EventImpl:   EventImpl{Type_: EventTypeError, Metadata_: metadata},
		ErrorString: err.Error(),
	}
}

var _ Event = &EventError{}

// EventInterrupt reports a cancelled generation; Text holds whatever had
// streamed in before the interruption.
type EventInterrupt struct {
	EventImpl
	Text string `json:"text"`
}

func NewInterruptEvent(metadata EventMetadata, text string) *EventInterrupt {
	return &EventInterrupt{
		EventImpl: EventImpl{Type_: EventTypeInterrupt, Metadata_: metadata},
		Text:      text,
	}
}

var _ Event = &EventInterrupt{}

// NewEventFromJSON decodes an event from its wire form, dispatching on the
// type discriminator.
func NewEventFromJSON(b []byte) (Event, error) {
	var hdr struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(b, &hdr); err != nil {
		return nil, errors.Wrap(err, "parsing event header")
	}

	var ev Event
	switch hdr.Type {
	case EventTypeStart:
		ev = &EventStart{}
	case EventTypePartialCompletion:
		ev = &EventPartialCompletion{}
	case EventTypeFinal:
		ev = &EventFinal{}
	case EventTypeError:
		ev = &EventError{}
	case EventTypeInterrupt:
		ev = &EventInterrupt{}
	default:
		return nil, errors.Errorf("unknown event type %q", hdr.Type)
	}

	if err := json.Unmarshal(b, ev); err != nil {
		return nil, errors.Wrapf(err, "parsing %s event", hdr.Type)
	}
	if setter, ok := ev.(interface{ SetPayload([]byte) }); ok {
		setter.SetPayload(b)
	}
	return ev, nil
}
