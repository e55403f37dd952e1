// Package domain defines the core business entities for corpusd.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Job: One source document's processing lifecycle
//   - Index: A named grouping of jobs backing a vector collection
//   - Chunk: A bounded span of document text with provenance
//   - Project: The owning container for jobs and indexes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # State Transitions
//
// Job and Index records are shared mutable state. Every status change
// goes through the transition methods defined here; call sites never
// write status fields directly. The methods enforce the timestamp and
// flag invariants (a synced index always carries a chunk count, a
// terminal job never re-enters parsing, and so on).
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
