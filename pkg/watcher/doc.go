// Package watcher ingests files dropped into a directory.
//
// A Watcher listens for fsnotify create events on a single directory. Each
// new regular file is checked for readiness (its size must hold steady
// across one ReadinessInterval, tried up to ReadinessChecks times), read,
// and handed to the planner with StoreFile. With DeleteSource set the file
// is removed once the planner has accepted it.
//
//	w, err := watcher.New(cfg, planner, logger, watcher.WithMetrics(collector))
//	go w.Watch(ctx)
package watcher
