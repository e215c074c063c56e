// Package cache provides the ingest.Cache backends: a bounded in-memory LRU
// and a Redis-backed cache for deployments with several strata processes.
package cache
