package repricing

import (
	"context"
	"fmt"
)

// TickJob adapts the scheduler to the worker job interface.
type TickJob struct {
	scheduler *Scheduler
}

// NewTickJob wraps the scheduler for registration with the worker.
func NewTickJob(scheduler *Scheduler) (*TickJob, error) {
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	return &TickJob{scheduler: scheduler}, nil
}

func (j *TickJob) Name() string { return "repricing-tick" }

func (j *TickJob) Run(ctx context.Context) error {
	return j.scheduler.RunTick(ctx)
}
