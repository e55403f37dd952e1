// Package plaintext provides a document parser for plain-text and
// markdown files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// extensions are the filename extensions treated as plain text.
var extensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
	".log":  true,
	".csv":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Parser passes text documents through with line endings normalised.
type Parser struct{}

// New creates a new plain-text parser.
func New() *Parser {
	return &Parser{}
}

// Supports reports whether the filename has a known text extension.
func (p *Parser) Supports(filename string) bool {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

// Parse returns the document content with CRLF normalised to LF.
// Binary content is rejected rather than indexed as garbage.
func (p *Parser) Parse(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	if bytes.ContainsRune(data, 0) || !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8 text", domain.ErrParseFailure)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
