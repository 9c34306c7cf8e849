package concurrency

import (
	"context"
	"time"
)

// ThrottledWorker runs a job for each key, one at a time, spaced by interval
type ThrottledWorker struct {
	interval    time.Duration
	jobCallback func(ctx context.Context, arg string) error
}

func NewThrottledWorker(interval time.Duration, jobCallback func(ctx context.Context, arg string) error) ThrottledWorker {
	return ThrottledWorker{interval: interval, jobCallback: jobCallback}
}

// Run returns the errors of failed jobs keyed by arg. It stops early if ctx is done.
func (w *ThrottledWorker) Run(ctx context.Context, jobArgs []string) map[string]error {

	jobArgsChannel := make(chan string, len(jobArgs))

	for _, arg := range jobArgs {
		jobArgsChannel <- arg
	}
	close(jobArgsChannel)
	limiter := time.NewTicker(w.interval)
	defer limiter.Stop()

	errs := map[string]error{}
	for arg := range jobArgsChannel {
		select {
		case <-ctx.Done():
			errs[arg] = ctx.Err()
			continue
		case <-limiter.C:
		}
		if err := w.jobCallback(ctx, arg); err != nil {
			errs[arg] = err
		}
	}

	return errs
}
