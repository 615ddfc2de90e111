package claude

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseSSEEvent(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected StreamingEvent
		wantErr  bool
	}{
		{
			name:  "text delta",
			lines: []string{`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi"}}` + "\n"},
			expected: StreamingEvent{
				Type:  ContentBlockDeltaType,
				Delta: &Delta{Type: TextDeltaType, Text: "Hi"},
			},
		},
		{
			name: "event field is ignored",
			lines: []string{
				"event: message_stop\n",
				`data: {"type":"message_stop"}` + "\n",
			},
			expected: StreamingEvent{Type: MessageStopType},
		},
		{
			name: "multi-line data is joined",
			lines: []string{
				`data: {"type":"message_delta",` + "\n",
				`data: "delta":{"stop_reason":"end_turn"}}` + "\n",
			},
			expected: StreamingEvent{
				Type:  MessageDeltaType,
				Delta: &Delta{StopReason: "end_turn"},
			},
		},
		{
			name:    "malformed payload",
			lines:   []string{"data: {not json\n"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([][]byte, 0, len(tt.lines))
			for _, l := range tt.lines {
				lines = append(lines, []byte(l))
			}

			var got StreamingEvent
			err := parseSSEEvent(lines, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unexpected error status: %v", err)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestStreamMessageDecodesEvents(t *testing.T) {
	body := "event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"a"}}` + "\n\n" +
		"event: message_stop\n" +
		`data: {"type":"message_stop"}` + "\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("Expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, body)
	}))
	defer srv.Close()

	client := NewClient("key", srv.URL)
	events, err := client.StreamMessage(context.Background(), &MessageRequest{
		Model:     "claude-3-5-sonnet-20241022",
		Messages:  []Message{{Role: "user", Content: "hi"}},
		MaxTokens: 16,
		Stream:    true,
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}

	var got []StreamingEvent
	for event := range events {
		got = append(got, event)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].Type != ContentBlockDeltaType || got[0].Delta == nil || got[0].Delta.Text != "a" {
		t.Errorf("Unexpected first event: %+v", got[0])
	}
	if got[1].Type != MessageStopType {
		t.Errorf("Unexpected second event: %+v", got[1])
	}
}

func TestStreamMessageErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens required"}}`)
	}))
	defer srv.Close()

	client := NewClient("key", srv.URL)
	_, err := client.StreamMessage(context.Background(), &MessageRequest{Model: "m", Stream: true})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if err.Error() != "max_tokens required" {
		t.Errorf("Expected API error message, got %q", err.Error())
	}
}
