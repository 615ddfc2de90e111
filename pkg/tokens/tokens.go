// Package tokens estimates how many tokens a conversation will occupy in a
// model's context window.
package tokens

import (
	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// Chat APIs frame every message with role and separator tokens and prime the
// reply with a fixed preamble.
const (
	tokensPerMessage = 4
	tokensPerReply   = 3
)

// codecFor returns the codec registered for model. Models without a
// registered codec (Claude, local models) fall back to cl100k_base, which is
// close enough for budgeting.
func codecFor(model string) (tokenizer.Codec, error) {
	if model != "" {
		if codec, err := tokenizer.ForModel(tokenizer.Model(model)); err == nil {
			return codec, nil
		}
	}
	return tokenizer.Get(tokenizer.Cl100kBase)
}

// CountText counts the tokens of a single string under model's encoding.
func CountText(text string, model string) (int, error) {
	codec, err := codecFor(model)
	if err != nil {
		return 0, errors.Wrap(err, "creating tokenizer")
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "encoding text")
	}
	return len(ids), nil
}

// Count estimates the prompt size of a conversation, including the
// per-message framing and the reply primer.
func Count(conv conversation.Conversation, model string) (int, error) {
	if len(conv) == 0 {
		return 0, nil
	}

	codec, err := codecFor(model)
	if err != nil {
		return 0, errors.Wrap(err, "creating tokenizer")
	}

	total := 0
	for _, msg := range conv {
		ids, _, err := codec.Encode(msg.Content)
		if err != nil {
			return 0, errors.Wrapf(err, "encoding %s message", msg.Role)
		}
		total += len(ids) + tokensPerMessage
	}
	return total + tokensPerReply, nil
}
