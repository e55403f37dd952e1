package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWordCodec_Count tests the approximate word count
func TestWordCodec_Count(t *testing.T) {
	c := WordCodec{}

	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 0, c.Count("   \n\t  "))
	assert.Equal(t, 4, c.Count("one two  three\nfour"))
}

// TestWordCodec_Tail tests tail extraction
func TestWordCodec_Tail(t *testing.T) {
	c := WordCodec{}

	assert.Equal(t, "three four", c.Tail("one two three four", 2))
	assert.Equal(t, "one two", c.Tail("one two", 5))
	assert.Equal(t, "", c.Tail("one two", 0))
}

// TestWordCodec_Truncate tests truncation
func TestWordCodec_Truncate(t *testing.T) {
	c := WordCodec{}

	assert.Equal(t, "one two", c.Truncate("one two three four", 2))
	assert.Equal(t, "one two", c.Truncate("one two", 5))
	assert.Equal(t, "", c.Truncate("one two", 0))
}

// TestWordCodec_Approximate tests the fallback flag
func TestWordCodec_Approximate(t *testing.T) {
	assert.True(t, WordCodec{}.Approximate())
}

// TestWordCodec_Deterministic tests identical input yields identical output
func TestWordCodec_Deterministic(t *testing.T) {
	c := WordCodec{}
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)

	assert.Equal(t, c.Count(text), c.Count(text))
	assert.Equal(t, c.Tail(text, 13), c.Tail(text, 13))
}

// TestBPECodec_RoundTrip tests encode/decode round-trips losslessly.
// Skipped when the tiktoken vocabulary cannot be loaded (offline).
func TestBPECodec_RoundTrip(t *testing.T) {
	c, err := NewBPECodec(PrimaryEncoding)
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	text := "Section A\n\nSection B: packing greedily preserves order."
	tokens := c.Encode(text)
	require.NotEmpty(t, tokens)

	assert.Equal(t, text, c.Decode(tokens))
	assert.Equal(t, len(tokens), c.Count(text))
	assert.False(t, c.Approximate())
}

// TestBPECodec_TailAndTruncate tests token-aligned span operations.
func TestBPECodec_TailAndTruncate(t *testing.T) {
	c, err := NewBPECodec(PrimaryEncoding)
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)

	tail := c.Tail(text, 10)
	assert.Equal(t, 10, c.Count(tail))
	assert.True(t, strings.HasSuffix(text, tail))

	head := c.Truncate(text, 25)
	assert.Equal(t, 25, c.Count(head))
	assert.True(t, strings.HasPrefix(text, head))
}
