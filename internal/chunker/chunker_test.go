package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/tokenizer"
)

func testMeta() domain.ChunkMetadata {
	return domain.ChunkMetadata{
		DocumentSource: "job-1",
		DocumentName:   "report.pdf",
	}
}

// sentences returns n five-word sentences as one paragraph.
func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "word%d alpha beta gamma delta. ", i)
	}
	return strings.TrimSpace(b.String())
}

// TestSplit_SingleChunkUnderBudget tests that input under the budget
// produces exactly one chunk containing all the text.
func TestSplit_SingleChunkUnderBudget(t *testing.T) {
	c := New(tokenizer.WordCodec{}, WithMaxTokens(1000), WithOverlapTokens(50))

	page := "Introduction\n\nThis system ingests documents and indexes them for search."
	chunks := c.Split([]string{page}, testMeta())

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Introduction")
	assert.Contains(t, chunks[0].Text, "indexes them for search")
	assert.Equal(t, "job-1", chunks[0].Metadata.DocumentSource)
	assert.Equal(t, 0, chunks[0].Metadata.ChunkIndex)
	assert.Equal(t, tokenizer.WordCodec{}.Count(chunks[0].Text), chunks[0].Metadata.NumTokens)
	assert.NotEmpty(t, chunks[0].ID)
}

// TestSplit_EmptyInput tests that blank pages produce no chunks
func TestSplit_EmptyInput(t *testing.T) {
	c := New(tokenizer.WordCodec{})

	assert.Empty(t, c.Split(nil, testMeta()))
	assert.Empty(t, c.Split([]string{"", "   \n\n  "}, testMeta()))
}

// TestSplit_BudgetRespected tests that every chunk stays within the
// token budget.
func TestSplit_BudgetRespected(t *testing.T) {
	codec := tokenizer.WordCodec{}
	c := New(codec, WithMaxTokens(100), WithOverlapTokens(10))

	chunks := c.Split([]string{sentences(200)}, testMeta())
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, codec.Count(chunk.Text), 100)
	}
}

// TestSplit_OverlapCarried tests scenario: a long uniform paragraph
// split under budget 500 with 50-token overlap. Every chunk but the
// last lands in [450,500] tokens and adjacent chunks share the overlap.
func TestSplit_OverlapCarried(t *testing.T) {
	codec := tokenizer.WordCodec{}
	c := New(codec, WithMaxTokens(500), WithOverlapTokens(50))

	chunks := c.Split([]string{sentences(600)}, testMeta()) // 3000 words
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks[:len(chunks)-1] {
		n := codec.Count(chunk.Text)
		assert.GreaterOrEqual(t, n, 450, "chunk %d", i)
		assert.LessOrEqual(t, n, 500, "chunk %d", i)
	}

	for i := 1; i < len(chunks); i++ {
		tail := codec.Tail(chunks[i-1].Text, 50)
		head := strings.Join(strings.Fields(chunks[i].Text)[:50], " ")
		assert.Equal(t, strings.Join(strings.Fields(tail), " "), head,
			"chunk %d does not start with the previous chunk's tail", i)
	}
}

// TestSplit_HeadingStartsNewSection tests that a heading-like line
// forces a section boundary, observable when the budget forces a split.
func TestSplit_HeadingStartsNewSection(t *testing.T) {
	codec := tokenizer.WordCodec{}
	c := New(codec, WithMaxTokens(12), WithOverlapTokens(0))

	page := "OVERVIEW\nthe first part covers ingestion of uploaded files here\n" +
		"Query Handling\nthe second part covers similarity queries over chunks"
	chunks := c.Split([]string{page}, testMeta())

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "OVERVIEW"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "Query Handling"))
	assert.Equal(t, 0, chunks[0].Metadata.ChunkIndex)
	assert.Equal(t, 1, chunks[1].Metadata.ChunkIndex)
}

// TestSplit_HardTruncation tests the lossy escape hatch: a single
// sentence over the budget is cut to exactly MaxTokens.
func TestSplit_HardTruncation(t *testing.T) {
	codec := tokenizer.WordCodec{}
	c := New(codec, WithMaxTokens(20), WithOverlapTokens(0))

	// 60 words with no sentence boundary at all.
	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	chunks := c.Split([]string{strings.Join(words, " ")}, testMeta())

	require.Len(t, chunks, 1)
	assert.Equal(t, 20, codec.Count(chunks[0].Text))
}

// TestSplit_StubDiscarded tests that a remainder under five words is
// dropped rather than emitted as a stub chunk.
func TestSplit_StubDiscarded(t *testing.T) {
	codec := tokenizer.WordCodec{}
	c := New(codec, WithMaxTokens(10), WithOverlapTokens(0))

	// One full sentence, then a three-word fragment in its own section.
	page := "alpha beta gamma delta epsilon zeta eta theta.\n\nHEADING\ntiny tail end"
	chunks := c.Split([]string{page}, testMeta())

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "tiny tail")
}

// TestSplit_Deterministic tests that identical inputs yield identical
// chunk boundaries and text; only ids differ.
func TestSplit_Deterministic(t *testing.T) {
	c := New(tokenizer.WordCodec{}, WithMaxTokens(80), WithOverlapTokens(8))
	pages := []string{sentences(100), "APPENDIX\n" + sentences(40)}

	a := c.Split(pages, testMeta())
	b := c.Split(pages, testMeta())

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
		assert.Equal(t, a[i].Metadata.NumTokens, b[i].Metadata.NumTokens)
		assert.NotEqual(t, a[i].ID, b[i].ID)
	}
}

// TestSplit_ExtrasPreserved tests caller-supplied extras survive
func TestSplit_ExtrasPreserved(t *testing.T) {
	meta := testMeta()
	meta.Extras = map[string]string{"tenant": "acme"}

	c := New(tokenizer.WordCodec{}, WithMaxTokens(1000))
	chunks := c.Split([]string{"one two three four five six seven"}, meta)

	require.Len(t, chunks, 1)
	assert.Equal(t, "acme", chunks[0].Metadata.Extras["tenant"])
}

// TestNew_OverlapClamped tests overlap >= budget is clamped
func TestNew_OverlapClamped(t *testing.T) {
	c := New(tokenizer.WordCodec{}, WithMaxTokens(100), WithOverlapTokens(100))
	assert.Equal(t, 25, c.OverlapTokens())
}

// TestLooksLikeHeading tests the heading heuristic
func TestLooksLikeHeading(t *testing.T) {
	assert.True(t, looksLikeHeading("OVERVIEW"))
	assert.True(t, looksLikeHeading("Query Handling"))
	assert.False(t, looksLikeHeading("Notes:"))
	assert.False(t, looksLikeHeading("this is a plain sentence"))
	assert.False(t, looksLikeHeading(strings.Repeat("Very Long Heading ", 10)))
}
