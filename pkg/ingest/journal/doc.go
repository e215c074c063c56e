// Package journal provides the ingest.Journal backends.
//
// The journal is the audit trail of what strata did to each file: plans
// executed, plan failures, retention deletions and archives. It is separate
// from the operator log; entries are meant to be queried after the fact with
// Search and Since.
//
// The file backend writes one line per entry:
//
//	2025-06-01T10:04:05.123456789Z: File deleted: 6f0c...
package journal
