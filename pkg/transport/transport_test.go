package transport

import (
	"sync"

	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/events"
)

// collectSink records every published event, in order.
type collectSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *collectSink) PublishEvent(event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *collectSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event{}, s.events...)
}

func (s *collectSink) Types() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]events.EventType, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type())
	}
	return types
}

// responseTarget builds a document with a single empty node and returns a
// marker at the end of its body, the way a thread responder sets one up.
func responseTarget() (*document.Document, *document.Node, *document.Marker, error) {
	doc := document.New()
	node := doc.AppendTopLevel("AI", "\n")
	marker, err := doc.MarkerAtBodyEnd(node)
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, node, marker, nil
}
