// Package chunker provides hybrid structural + semantic text chunking
// under a hard token budget.
//
// The first pass splits page text into coarse sections on heading-like
// lines. The second pass packs sections greedily into chunks of at most
// MaxTokens tokens, subdividing oversized sections by paragraph, then
// by sentence, and finally hard-truncating a single oversized sentence.
// When a boundary is forced mid-document, the next chunk is seeded with
// the trailing OverlapTokens tokens of the previous one so context
// survives the cut.
package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/logger"
)

// DefaultMaxTokens is the default hard token budget per chunk.
const DefaultMaxTokens = 500

// DefaultOverlapTokens is the default trailing-context carry.
const DefaultOverlapTokens = 50

// minChunkWords is the minimum word count for a flushed chunk.
// Anything shorter is an overlap-only stub and is discarded.
const minChunkWords = 5

// headingMaxLen is the longest line still considered a heading candidate.
const headingMaxLen = 120

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// Codec is the token measure the chunker packs against. One codec is
// held for an entire Split call; exact and approximate measures are
// never mixed within a run.
type Codec interface {
	Count(text string) int
	Tail(text string, n int) string
	Truncate(text string, max int) string
	Approximate() bool
}

// Chunker splits ordered page texts into bounded chunks.
type Chunker struct {
	codec         Codec
	maxTokens     int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the hard token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlapTokens sets the trailing-context carry in tokens.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// New creates a chunker packing against the given codec.
func New(codec Codec, opts ...Option) *Chunker {
	c := &Chunker{
		codec:         codec,
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Overlap must leave room for new content in every chunk
	if c.overlapTokens >= c.maxTokens {
		c.overlapTokens = c.maxTokens / 4
	}
	return c
}

// MaxTokens returns the configured token budget.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// OverlapTokens returns the configured overlap carry.
func (c *Chunker) OverlapTokens() int {
	return c.overlapTokens
}

// Split chunks the ordered page texts of one document. The metadata is
// stamped onto every chunk with ChunkIndex and NumTokens filled in per
// chunk. Chunk ids are fresh random identifiers; everything else is
// deterministic for identical inputs and parameters.
func (c *Chunker) Split(pages []string, meta domain.ChunkMetadata) []domain.Chunk {
	sections := c.segment(pages)

	p := &packer{
		codec:         c.codec,
		maxTokens:     c.maxTokens,
		overlapTokens: c.overlapTokens,
		meta:          meta,
	}

	for _, section := range sections {
		secTokens := c.codec.Count(section)

		// Fits in the remaining budget of the running buffer.
		if secTokens <= c.maxTokens-p.currentTokens {
			p.append(section, secTokens)
			continue
		}

		// The section alone blows the budget: subdivide by paragraph,
		// then by sentence, hard-truncating a single oversized sentence.
		if secTokens > c.maxTokens {
			c.packOversized(p, section)
			continue
		}

		// The section fits a fresh chunk but not this one: flush and
		// carry overlap.
		p.flush()
		p.seedOverlap()
		p.append(section, secTokens)
	}

	p.flush()

	logger.Debug("Chunked %d pages into %d chunks", len(pages), len(p.chunks))
	return p.chunks
}

// packOversized subdivides one over-budget section into the packer.
func (c *Chunker) packOversized(p *packer, section string) {
	for _, para := range splitParagraphs(section) {
		ptoks := c.codec.Count(para)
		if ptoks <= c.maxTokens {
			p.appendWithFlush(para, ptoks)
			continue
		}
		for _, sent := range splitSentences(para) {
			stoks := c.codec.Count(sent)
			if stoks > c.maxTokens {
				// Lossy escape hatch for a single unsplittable run.
				logger.Warn("Hard-truncating %d-token sentence to %d tokens", stoks, c.maxTokens)
				sent = c.codec.Truncate(sent, c.maxTokens)
				stoks = c.maxTokens
			}
			p.appendWithFlush(sent, stoks)
		}
	}
}

// segment performs the structural pass: within each page, lines are
// grouped into sections, a new section starting at every heading-like
// line. Runs of blank lines collapse to a single paragraph break so
// the subdivision pass can still split oversized sections on
// paragraphs. Page order is preserved.
func (c *Chunker) segment(pages []string) []string {
	var sections []string

	emit := func(buffer []string) []string {
		section := strings.TrimSpace(strings.Join(buffer, "\n"))
		if section != "" {
			sections = append(sections, section)
		}
		return nil
	}

	for _, page := range pages {
		var buffer []string
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				// Paragraph break marker, collapsed across runs.
				if len(buffer) > 0 && buffer[len(buffer)-1] != "" {
					buffer = append(buffer, "")
				}
				continue
			}
			if looksLikeHeading(line) && hasContent(buffer) {
				buffer = emit(buffer)
			}
			buffer = append(buffer, line)
		}
		buffer = emit(buffer)
	}
	return sections
}

// hasContent reports whether the buffer holds any non-blank line.
func hasContent(buffer []string) bool {
	for _, line := range buffer {
		if line != "" {
			return true
		}
	}
	return false
}

// packer holds the greedy second-pass state.
type packer struct {
	codec         Codec
	maxTokens     int
	overlapTokens int
	meta          domain.ChunkMetadata

	chunks        []domain.Chunk
	currentTexts  []string
	currentTokens int
}

// append adds a unit to the running buffer without flushing.
func (p *packer) append(text string, tokens int) {
	p.currentTexts = append(p.currentTexts, text)
	p.currentTokens += tokens
}

// appendWithFlush adds a unit, flushing first when it would not fit.
func (p *packer) appendWithFlush(text string, tokens int) {
	if p.currentTokens+tokens > p.maxTokens {
		p.flush()
		p.seedOverlap()
	}
	p.append(text, tokens)
}

// flush emits the running buffer as a finished chunk. Chunks below the
// minimum word count are discarded so overlap carry never produces a
// stub chunk on its own.
func (p *packer) flush() {
	text := strings.TrimSpace(strings.Join(p.currentTexts, "\n"))
	p.currentTexts = nil
	p.currentTokens = 0
	if text == "" {
		return
	}
	if len(strings.Fields(text)) < minChunkWords {
		logger.Debug("Discarding %d-word stub chunk", len(strings.Fields(text)))
		return
	}

	meta := p.meta
	meta.ChunkIndex = len(p.chunks)
	// Overlap changes tokenisation, so the count is recomputed on the
	// final text rather than carried from the packing buffer.
	meta.NumTokens = p.codec.Count(text)

	p.chunks = append(p.chunks, domain.Chunk{
		ID:       uuid.New().String(),
		Text:     text,
		Metadata: meta,
	})
}

// seedOverlap starts the next buffer with the tail of the last emitted
// chunk. No-op when overlap is disabled or nothing was emitted yet.
func (p *packer) seedOverlap() {
	if p.overlapTokens <= 0 || len(p.chunks) == 0 {
		return
	}
	tail := p.codec.Tail(p.chunks[len(p.chunks)-1].Text, p.overlapTokens)
	if tail == "" {
		return
	}
	p.currentTexts = []string{tail}
	p.currentTokens = p.codec.Count(tail)
}

// looksLikeHeading reports whether a line reads like a section heading:
// short, all-caps or title-case, and not ending in a colon.
func looksLikeHeading(line string) bool {
	if len(line) > headingMaxLen || strings.HasSuffix(line, ":") {
		return false
	}
	return isUpper(line) || isTitle(line)
}

// isUpper reports whether the line has at least one cased rune and all
// cased runes are upper case.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// isTitle reports whether every word in the line starts with an upper
// case rune followed by no further upper case runes, with at least one
// cased rune overall.
func isTitle(s string) bool {
	cased := false
	for _, word := range strings.Fields(s) {
		expectUpper := true
		for _, r := range word {
			switch {
			case unicode.IsUpper(r):
				if !expectUpper {
					return false
				}
				cased = true
				expectUpper = false
			case unicode.IsLower(r):
				if expectUpper {
					return false
				}
				cased = true
			default:
				expectUpper = true
			}
		}
	}
	return cased
}

// splitParagraphs splits on blank lines, trimming and dropping empties.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(strings.TrimSpace(text), "$1\x00")
	var out []string
	for _, s := range strings.Split(marked, "\x00") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
