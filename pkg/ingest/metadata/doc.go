// Package metadata provides the ingest.MetadataStore backends.
//
//   - MemoryStore keeps records in a map (tests, single-run CLI use)
//   - SQLiteStore persists to a local SQLite database in WAL mode
//   - PostgresStore persists to a PostgreSQL table
//   - BadgerStore persists to an embedded Badger key-value store
//
// SQLite and PostgreSQL share the statement set in sql.go; timestamps are
// stored as Unix nanoseconds in both so ordering and equality survive a round
// trip unchanged.
package metadata
