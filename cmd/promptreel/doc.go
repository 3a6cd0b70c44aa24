// Package main hosts the promptreel CLI entrypoint and command graph.
//
// `promptreel serve` runs the daemon: the workflow manager plus the HTTP API.
// The job commands (create, show, list) are thin HTTP clients of that API,
// while prune, doctor and config operate on local state directly. Configuration
// resolution, .env loading and API client construction live in the shared
// command context so subcommands only deal with presentation.
package main
