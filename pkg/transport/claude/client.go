package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	defaultAPIVersion = "2023-06-01"
)

// Client represents the Claude Messages API client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	APIVersion string
	BaseURL    string
}

// NewClient initializes and returns a new API client.
func NewClient(apiKey string, baseURL string, apiVersion ...string) *Client {
	version := defaultAPIVersion
	if len(apiVersion) > 0 && apiVersion[0] != "" {
		version = apiVersion[0]
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		BaseURL:    baseURL,
		APIVersion: version,
	}
}

// Helper function to set necessary headers
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.APIVersion)
	req.Header.Set("Content-Type", "application/json")
}

// SendMessage sends a message request and returns the complete response.
func (c *Client) SendMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if unmarshalErr := json.Unmarshal(respBody, &errorResp); unmarshalErr != nil {
			return nil, unmarshalErr
		}
		return nil, errors.New(errorResp.Error.Message)
	}

	var messageResp MessageResponse
	if unmarshalErr := json.Unmarshal(respBody, &messageResp); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	return &messageResp, nil
}

// StreamMessage sends a message request and returns a channel of decoded
// streaming events. The channel is closed when the stream ends or the
// context is cancelled.
func (c *Client) StreamMessage(ctx context.Context, req *MessageRequest) (<-chan StreamingEvent, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)
		var errorResp ErrorResponse
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if unmarshalErr := json.Unmarshal(respBody, &errorResp); unmarshalErr != nil {
			return nil, unmarshalErr
		}
		return nil, errors.New(errorResp.Error.Message)
	}

	events := make(chan StreamingEvent)
	go func() {
		defer close(events)
		streamEvents(ctx, resp, events)
	}()

	return events, nil
}

func streamEvents(ctx context.Context, resp *http.Response, events chan StreamingEvent) {
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	reader := bufio.NewReader(resp.Body)
	var eventLines [][]byte
	eventCount := 0
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF && err != context.Canceled {
				log.Error().Err(err).Msg("unexpected error reading streaming response")
			}
			log.Debug().Int("total_events_processed", eventCount).Msg("streaming reader finished")
			break
		}
		if len(bytes.TrimSpace(line)) != 0 {
			// Accumulate the lines for the current event
			eventLines = append(eventLines, line)
			continue
		}

		// Empty line indicates the end of an event
		var event StreamingEvent
		if parseErr := parseSSEEvent(eventLines, &event); parseErr != nil {
			log.Debug().Err(parseErr).Msg("failed to parse SSE event")
			eventLines = eventLines[:0]
			continue
		}
		eventCount++
		log.Trace().
			Str("event_type", string(event.Type)).
			Int("event_number", eventCount).
			Object("event", event).
			Msg("parsed streaming event")

		select {
		case events <- event:
		case <-ctx.Done():
			log.Debug().Msg("context cancelled, stopping streaming")
			return
		}
		eventLines = eventLines[:0]
	}
}

// parseSSEEvent parses an SSE event from multiple lines.
func parseSSEEvent(lines [][]byte, event *StreamingEvent) error {
	eventData := ""
	for _, line := range lines {
		line = bytes.TrimSuffix(line, []byte("\n"))

		// Split the line into "field: value" pairs
		parts := bytes.SplitN(line, []byte(": "), 2)
		if len(parts) != 2 {
			continue
		}

		field, value := parts[0], parts[1]
		if string(field) == "data" {
			eventData += string(value) + "\n"
		}
	}

	eventData = strings.TrimSuffix(eventData, "\n")

	return json.Unmarshal([]byte(eventData), event)
}
