// Package jobs owns the Job entity, its lifecycle rules, and persistence.
//
// A job moves pending -> running -> completed|failed (pending -> failed is
// allowed for jobs that never start). Content and artifact fields are
// write-once. Two Repository implementations are provided: an embedded SQLite
// store (the default, with migrations applied on open) and a PostgreSQL store
// for shared deployments. Open picks one from configuration.
package jobs
