// Package planner is the orchestration façade over plans, metadata, cache
// and journal.
//
// StoreFile assigns an identifier, records metadata, picks a plan through the
// DecisionMaker and hands it to the executor. When the plan succeeds the
// journal records it and the cache is populated; when it fails after the
// retry, the metadata and cache entry are removed again so a failed store
// never leaves a file that cannot be read. With SyncStore the call waits for
// the outcome; otherwise the returned Receipt delivers it.
//
// RetrieveFile is read-through: a cache hit returns immediately, a miss
// replays the DecisionMaker on the stored metadata, runs the plan's read path
// and populates the cache.
//
// Sweep applies the retention policy to every known file. A failure on one
// file is journaled and the sweep moves on. Only one sweep runs at a time;
// an overlapping call returns ErrSweepInProgress.
package planner
