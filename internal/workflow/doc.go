// Package workflow runs jobs through the configured pipeline stages.
//
// The Manager picks pending jobs from the repository (woken on create and by
// a poll interval), runs up to workflow.max_concurrent_jobs of them at once,
// and drives each through metadata, acquisition, normalization,
// transcription, composition and publish in order. A job moves to Running
// when picked up, Completed once every stage has succeeded and Failed with a
// message on the first unrecovered error. Stage start, completion and failure
// are logged with event_type fields; outcomes are also sent to the notifier.
//
// Shutdown cancels every running job; those jobs are recorded as Failed with
// jobs.DaemonStopReason. Jobs still Running at startup are left over from a
// crash and are failed with jobs.InterruptedReason before new work begins.
package workflow
