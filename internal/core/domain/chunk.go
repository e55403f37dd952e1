package domain

// Chunk is a bounded-length span of document text with provenance
// metadata. Chunks are produced by the chunking pass, consumed by
// embedding and upsert, and never mutated after creation.
type Chunk struct {
	// ID is a fresh random identifier.
	ID string

	// Text is the chunk content, bounded by the chunker's token budget.
	Text string

	// Metadata carries the chunk's provenance.
	Metadata ChunkMetadata
}

// ChunkMetadata is the provenance stamped onto every chunk. The known
// fields stay type-safe; Extras carries caller-supplied string pairs.
type ChunkMetadata struct {
	// DocumentSource is the id of the job the chunk came from.
	DocumentSource string

	// DocumentName is the source filename or URL, when known.
	DocumentName string

	// ChunkIndex is the ordinal position within the source document.
	ChunkIndex int

	// NumTokens is the token count of Text, computed on the final
	// chunk text (overlap changes tokenisation, so it is never
	// carried forward from intermediate buffers).
	NumTokens int

	// Extras holds caller-supplied metadata pairs.
	Extras map[string]string
}

// QueryResult is one ranked hit returned from a query, in the vector
// store's native ranking order.
type QueryResult struct {
	// Text is the matched chunk text.
	Text string

	// Score is the store's similarity score for its own metric.
	Score float32

	// DocumentSource is the job id the chunk came from.
	DocumentSource string
}
