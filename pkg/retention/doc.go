// Package retention decides when stored files are reclaimed.
//
// A Policy is an ordered list of age rules. Each rule adds a duration to a
// file's creation time; the first rule whose cutoff lies strictly before the
// evaluation time selects the file and names the action (ARCHIVE or DELETE).
//
// Days, weeks, months and years use calendar arithmetic (time.AddDate), so
// "1 months" from January 31 lands on March 2 or 3 depending on the year.
// Seconds are supported for fast tests.
//
// Policies load as data:
//
//	name: default
//	description: reclaim after a quarter
//	rules:
//	  - type: age
//	    unit: days
//	    value: 90
//	    action: ARCHIVE
//
// Scheduler runs a sweep function on a cron schedule.
package retention
