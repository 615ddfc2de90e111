package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStepPrinterWritesDeltasAndClosingNewline(t *testing.T) {
	var buf bytes.Buffer
	h := StepPrinterFunc("", &buf)

	meta := EventMetadata{ID: uuid.New()}
	for _, ev := range []Event{
		NewStartEvent(meta),
		NewPartialCompletionEvent(meta, "Hello", "Hello"),
		NewPartialCompletionEvent(meta, ", world", "Hello, world"),
		NewFinalEvent(meta, "Hello, world"),
	} {
		b, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, h(message.NewMessage(watermill.NewUUID(), b)))
	}

	require.Equal(t, "Hello, world\n", buf.String())
}
