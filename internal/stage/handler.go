package stage

import (
	"context"

	"promptreel/internal/jobs"
)

// Handler describes the contract the workflow manager needs from each stage.
// Prepare verifies the job carries the stage inputs; Execute writes only the
// fields the stage owns.
type Handler interface {
	Prepare(context.Context, *jobs.Job) error
	Execute(context.Context, *jobs.Job) error
	HealthCheck(context.Context) Health
}
