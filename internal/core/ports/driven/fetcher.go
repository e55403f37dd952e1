package driven

import "context"

// PageFetcher retrieves a web page and reduces it to plain text.
// Used by scrape jobs; the fetch plus extraction counts as that job's
// parse step.
type PageFetcher interface {
	// Fetch downloads the URL and returns its text content. Failures
	// wrap domain.ErrParseFailure.
	Fetch(ctx context.Context, url string) (string, error)
}
