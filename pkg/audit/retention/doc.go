// Package retention enforces audit record retention out of band: an
// age-based phase driven by retention days and a count-based phase
// capping total records, optionally run on a cron schedule.
package retention
