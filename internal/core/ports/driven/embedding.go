package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
//
// The sync orchestrator embeds every chunk of every bound document in
// one Embed call. The call is latency and network bound, so adapters
// must carry a bounded request timeout; a timeout is an ordinary
// failure, not a distinguished case.
//
// Implementations may include:
//   - OpenAI-compatible APIs (text-embedding-3-small, NVIDIA NIM models)
//   - Local models via inference servers
type EmbeddingProvider interface {
	// Embed generates one vector per input text using the given model.
	// The returned slice is index-aligned with texts. Failures wrap
	// domain.ErrProviderFailure.
	Embed(ctx context.Context, texts []string, model string) ([][]float32, error)
}
