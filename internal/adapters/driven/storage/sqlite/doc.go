// Package sqlite provides SQLite-backed implementations of the
// metadata store ports. A single database file holds projects, jobs,
// and indexes, with migrations embedded in the binary.
package sqlite
