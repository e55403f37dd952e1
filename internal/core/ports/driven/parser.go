package driven

import "context"

// DocumentParser extracts plain text from raw document bytes.
// OCR and layout analysis are external concerns; implementations here
// wrap whatever extraction library fits the format.
type DocumentParser interface {
	// Parse extracts text from the file bytes. A failure wraps
	// domain.ErrParseFailure and is terminal for the enclosing job.
	Parse(ctx context.Context, data []byte) (string, error)

	// Supports reports whether the parser handles the given filename.
	Supports(filename string) bool
}
