// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BlobStore: Extracted-text persistence (MinIO or in-memory)
//   - JobStore, IndexStore, ProjectStore: Metadata persistence (SQLite or in-memory)
//   - EmbeddingProvider: Generates vector embeddings
//   - VectorStore: Vector collection storage and similarity search (Qdrant)
//
// # Optional Interfaces
//
//   - DocumentParser: Text extraction per source format. The ingest
//     service selects a parser by filename; manual-content jobs need none.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
