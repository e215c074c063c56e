// Package storage provides the ingest.Storage backends: a local filesystem
// store, an S3 object store and an in-memory store for tests and dry runs.
//
// Every backend is content addressed on write. The SHA-256 of the payload is
// recorded next to the object and Store skips the write when the identifier
// already holds identical bytes, so a plan retried after a partial failure
// never produces a duplicate or torn object.
package storage
