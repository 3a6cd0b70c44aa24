// Package api exposes the job pipeline over HTTP and provides the client the
// CLI uses to talk to a running daemon.
//
// # Routes
//
//	POST /api/jobs        create a job from {"prompt": "..."}; 202 on success
//	GET  /api/jobs/{id}   fetch one job; 404 when unknown
//	GET  /api/jobs        list recent jobs, newest first (?limit=N)
//	GET  /api/health      daemon and stage health
//
// # Key Types
//
// Job: transport representation of a jobs.Job. Artifact identifiers are
// grouped under "artifacts"; the published URL only appears once publish
// succeeded.
//
// Health: workflow running state, job counts, stage readiness and the last
// error seen by the manager.
//
// # Design Notes
//
// DTOs use camelCase JSON tags and RFC3339 timestamps with milliseconds.
// Errors are returned as {"error": "..."} with the HTTP status carrying the
// classification: validation failures map to 400, unknown ids to 404 and
// everything else to 500.
package api
