package thread

import (
	"context"

	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Transport streams a model reply for an assembled conversation into the
// document through the marker. Engines in pkg/transport satisfy this.
type Transport interface {
	Send(ctx context.Context, messages conversation.Conversation, marker *document.Marker) error
}

// PendingResponse tracks one in-flight response generation. The AI node and
// the reserved next-turn node exist as soon as Respond returns; text arrives
// at the marker while the transport runs.
type PendingResponse struct {
	doc    *document.Document
	node   *document.Node
	next   *document.Node
	marker *document.Marker

	done chan struct{}
	err  error
}

// Node returns the node receiving the streamed reply.
func (p *PendingResponse) Node() *document.Node {
	return p.node
}

// NextTurn returns the node reserved for the user's next input.
func (p *PendingResponse) NextTurn() *document.Node {
	return p.next
}

// Done returns a channel that is closed once the transport has finished and
// the marker has been released.
func (p *PendingResponse) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the transport completes or ctx is cancelled. A transport
// failure comes back as a TransportError; the created nodes stay in the
// document either way.
func (p *PendingResponse) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Respond assembles the conversation leading to node, opens the response
// nodes and starts the transport.
//
// The AI child and the next-turn user child are both created, and the
// insertion marker anchored, before the transport is invoked. A failure up to
// that point aborts with a StructuralError and nothing is sent. Once the
// transport is running the nodes are permanent: a send failure leaves them
// empty in the document and surfaces through Wait.
func Respond(
	ctx context.Context,
	doc *document.Document,
	node *document.Node,
	rc conversation.RoleConfig,
	tr Transport,
) (*PendingResponse, error) {
	if doc == nil {
		return nil, &StructuralError{Err: errors.New("no document")}
	}
	if node == nil || !doc.Contains(node) {
		return nil, &StructuralError{Err: errors.New("node is not part of the document")}
	}

	chain, err := document.CollectAncestors(node)
	if err != nil {
		return nil, &StructuralError{Err: err}
	}
	messages := conversation.Build(chain, rc)

	aiNode, err := doc.AppendChild(node, rc.AIName, "\n")
	if err != nil {
		return nil, &StructuralError{Err: err}
	}
	marker, err := doc.MarkerAtBodyEnd(aiNode)
	if err != nil {
		return nil, &StructuralError{Err: err}
	}
	userNode, err := doc.AppendChild(node, rc.UserName, "\n")
	if err != nil {
		doc.ReleaseMarker(marker)
		return nil, &StructuralError{Err: err}
	}

	pending := &PendingResponse{
		doc:    doc,
		node:   aiNode,
		next:   userNode,
		marker: marker,
		done:   make(chan struct{}),
	}

	log.Debug().
		Str("marker_id", marker.ID()).
		Str("node_id", aiNode.ID.String()).
		Int("chain_length", len(chain)).
		Msg("starting response generation")

	go func() {
		defer close(pending.done)
		defer doc.ReleaseMarker(marker)

		if err := tr.Send(ctx, messages, marker); err != nil {
			log.Error().Err(err).Str("node_id", aiNode.ID.String()).Msg("transport send failed")
			pending.err = &TransportError{Err: err}
		}
	}()

	return pending, nil
}
