package events

import (
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
)

// StepPrinterFunc returns a handler that echoes a streamed response to w:
// deltas as they arrive, a closing newline when the response ends without
// one. A non-empty name is printed once before the first delta.
func StepPrinterFunc(name string, w io.Writer) func(msg *message.Message) error {
	isFirst := true

	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJSON(msg.Payload)
		if err != nil {
			return err
		}

		switch p := e.(type) {
		case *EventPartialCompletion:
			if isFirst && name != "" {
				isFirst = false
				if _, err := fmt.Fprintf(w, "\n%s: \n", name); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s", p.Delta); err != nil {
				return err
			}

		case *EventFinal:
			if !strings.HasSuffix(p.Text, "\n") {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}

		case *EventStart, *EventError, *EventInterrupt:
		}

		return nil
	}
}
