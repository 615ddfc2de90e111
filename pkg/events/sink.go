package events

// EventSink is a destination for streaming events. Engines publish to every
// sink they were configured with.
type EventSink interface {
	PublishEvent(event Event) error
}
