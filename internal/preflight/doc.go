// Package preflight provides readiness checks for the binaries, directories,
// storage and collaborator credentials promptreel depends on.
//
// The CLI "promptreel doctor" command runs RunAll and CheckSystemDeps and
// prints one line per check; the daemon logs the same dependency snapshot at
// startup. Network round-trips (the LLM ping) only happen when
// Options.Online is set, so doctor stays fast and offline by default.
package preflight
