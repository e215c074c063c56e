// Strata is a file ingestion service with plan-based storage and
// time-based retention.
//
// Files are stored through a plan selected by size: small files are
// written as-is, large files pass through a chain of transforms first.
// Metadata lives in a separate store, reads go through a cache, and every
// ingestion and retention event lands in an audit journal. A scheduled
// sweep archives or deletes files once the retention policy selects them.
//
// Usage:
//
//	# Run the daemon: directory watcher, retention scheduler, metrics
//	strata run --config /etc/strata/config.yaml
//
//	# Store files and print their identifiers
//	strata store report.pdf data.csv --attr team=finance
//
//	# Retrieve a file
//	strata get 6f1c2a3e-... -o report.pdf
//
//	# Run one retention sweep
//	strata sweep
//
//	# Show journal entries from the last day
//	strata journal --since 24h
package main

func main() {
	Execute()
}
