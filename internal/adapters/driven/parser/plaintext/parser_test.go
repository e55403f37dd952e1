package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// TestSupports tests extension matching.
func TestSupports(t *testing.T) {
	p := New()
	assert.True(t, p.Supports("notes.txt"))
	assert.True(t, p.Supports("README.md"))
	assert.True(t, p.Supports("DATA.CSV"))
	assert.False(t, p.Supports("report.pdf"))
	assert.False(t, p.Supports("archive.zip"))
	assert.False(t, p.Supports("noextension"))
}

// TestParse tests line-ending normalisation.
func TestParse(t *testing.T) {
	p := New()

	text, err := p.Parse(context.Background(), []byte("one\r\ntwo\rthree\n"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", text)
}

// TestParse_RejectsBinary tests that non-text content is refused.
func TestParse_RejectsBinary(t *testing.T) {
	p := New()

	_, err := p.Parse(context.Background(), []byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, domain.ErrParseFailure)

	_, err = p.Parse(context.Background(), []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

// TestParse_Empty tests that empty input is invalid.
func TestParse_Empty(t *testing.T) {
	p := New()

	_, err := p.Parse(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
