// Package daemon coordinates the long-running promptreel process.
//
// It wires configuration, the job repository, the workflow manager and the
// HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances from dispatching the same jobs. Start acquires the lock,
// fails jobs left running by a crashed process, begins dispatching and
// listens on paths.api_bind; Stop reverses that order.
//
// Keep orchestration logic here: individual pipeline stages live in their
// own packages and the process entry point (signals, log files, stage
// construction) lives in daemonrun.
package daemon
