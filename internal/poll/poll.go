// Package poll waits for a job to reach a terminal state by repeated gets.
// This is caller-side convenience on top of the client, with an explicit
// attempt cap so a stuck job can never hold the loop forever.
package poll

import (
	"context"
	"errors"
	"time"

	"github.com/mtelvers/go-slurm/pkg/slurmapi"
)

// ErrAttemptsExhausted means the job was still non-terminal after the final
// attempt.
var ErrAttemptsExhausted = errors.New("slurm: poll attempts exhausted")

// Getter is the one client operation the poller needs.
type Getter interface {
	Get(ctx context.Context, jobID string) (slurmapi.Job, error)
}

// Wait gets the job, returns it once its classified state is loop-terminal,
// and otherwise sleeps interval between attempts, up to maxAttempts. Get
// errors (including NotFoundError) abort the wait immediately.
func Wait(ctx context.Context, g Getter, jobID string, interval time.Duration, maxAttempts int) (slurmapi.Job, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return slurmapi.Job{}, ctx.Err()
			case <-time.After(interval):
			}
		}
		job, err := g.Get(ctx, jobID)
		if err != nil {
			return slurmapi.Job{}, err
		}
		if slurmapi.IsLoopTerminal(job.State()) {
			return job, nil
		}
	}
	return slurmapi.Job{}, ErrAttemptsExhausted
}
