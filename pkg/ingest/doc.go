// Package ingest defines the domain model shared by every part of strata:
// the FileMetadata record that identifies an ingested file, and the narrow
// collaborator contracts the planner drives.
//
// # Collaborators
//
// Four interfaces describe the I/O surface the planning engine depends on:
//
//   - Storage holds file bytes (local filesystem, S3, memory)
//   - MetadataStore holds FileMetadata records (memory, SQLite, PostgreSQL, Badger)
//   - Cache holds recently read bytes (memory LRU, Redis)
//   - Journal is the append-only audit trail (memory, file, SQLite)
//
// Implementations live in the storage, metadata, cache and journal
// subpackages. The ingesttest subpackage carries contract suites that every
// implementation runs.
//
// # Errors
//
// Backends report failures with the typed errors in errors.go. A missing
// identifier is always reported with an error that matches ErrNotFound:
//
//	data, err := store.Retrieve(ctx, id)
//	if errors.Is(err, ingest.ErrNotFound) {
//		// absent
//	}
package ingest
