// Package notifications delivers job outcome events to ntfy.
//
// When no topic is configured NewService returns a no-op implementation, so
// workflow code can notify unconditionally.
package notifications
