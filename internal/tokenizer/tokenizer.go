// Package tokenizer provides deterministic token counting for the
// chunker, backed by a fixed BPE subword encoding.
//
// When no BPE encoding can be loaded (the tiktoken vocabularies are
// fetched lazily and may be unavailable offline), construction falls
// back to a whitespace word codec. The two measures are different;
// a chunking call holds one codec for its whole run and never mixes
// them.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/silica-labs/corpusd/internal/logger"
)

// Encoding names tried in order at construction.
const (
	PrimaryEncoding  = "cl100k_base"
	FallbackEncoding = "r50k_base"
)

// Codec counts tokens and manipulates token-aligned text spans.
// Implementations are deterministic: identical input always yields
// identical counts and spans.
type Codec interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Tail returns the text of the last n tokens of text.
	Tail(text string, n int) string

	// Truncate returns text cut to at most max tokens.
	Truncate(text string, max int) string

	// Approximate reports whether this codec is the whitespace
	// fallback rather than a real subword tokenizer.
	Approximate() bool
}

// NewCodec returns a BPE codec, trying the primary then the fallback
// encoding, and finally the approximate word codec if neither loads.
func NewCodec() Codec {
	for _, name := range []string{PrimaryEncoding, FallbackEncoding} {
		enc, err := tiktoken.GetEncoding(name)
		if err != nil {
			logger.Debug("Encoding %s unavailable: %v", name, err)
			continue
		}
		return &BPECodec{enc: enc, name: name}
	}
	logger.Warn("No BPE encoding available, falling back to word counting")
	return WordCodec{}
}

// BPECodec wraps a tiktoken encoding. Encode and Decode round-trip
// losslessly for any contiguous token slice.
type BPECodec struct {
	enc  *tiktoken.Tiktoken
	name string
}

// NewBPECodec loads the named tiktoken encoding.
func NewBPECodec(name string) (*BPECodec, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	return &BPECodec{enc: enc, name: name}, nil
}

// Name returns the encoding name.
func (c *BPECodec) Name() string {
	return c.name
}

// Encode converts text to token ids.
func (c *BPECodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

// Decode converts token ids back to text.
func (c *BPECodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

// Count returns the number of tokens in text.
func (c *BPECodec) Count(text string) int {
	return len(c.Encode(text))
}

// Tail returns the text of the last n tokens of text.
func (c *BPECodec) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := c.Encode(text)
	if len(tokens) <= n {
		return text
	}
	return c.Decode(tokens[len(tokens)-n:])
}

// Truncate returns text cut to at most max tokens.
func (c *BPECodec) Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	tokens := c.Encode(text)
	if len(tokens) <= max {
		return text
	}
	return c.Decode(tokens[:max])
}

// Approximate reports false: this is a real subword tokenizer.
func (c *BPECodec) Approximate() bool {
	return false
}

// WordCodec is the approximate fallback. Its "tokens" are whitespace
// separated words, a coarser measure than BPE tokens. Callers must
// tolerate the difference and never mix codecs within one chunking run.
type WordCodec struct{}

// Count returns the whitespace word count.
func (WordCodec) Count(text string) int {
	return len(strings.Fields(text))
}

// Tail returns the last n words joined by single spaces.
func (WordCodec) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[len(words)-n:], " ")
}

// Truncate returns at most max words joined by single spaces.
func (WordCodec) Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}

// Approximate reports true: word counting is not tokenisation.
func (WordCodec) Approximate() bool {
	return true
}
