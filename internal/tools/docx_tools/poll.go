package docx_tools

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/teemow/larkdocs/internal/lark"
)

// ErrPollExhausted is returned when every attempt saw the job in progress.
var ErrPollExhausted = errors.New("import task still in progress after all poll attempts")

// errStillRunning marks an attempt that should be retried.
var errStillRunning = errors.New("import task in progress")

// PollPolicy is a fixed-interval poll with a bounded number of attempts.
type PollPolicy struct {
	MaxAttempts uint
	Interval    time.Duration
}

// DefaultPollPolicy polls five times, one second apart.
var DefaultPollPolicy = PollPolicy{MaxAttempts: 5, Interval: time.Second}

// CheckFunc fetches the job status for a 1-based attempt.
type CheckFunc func(ctx context.Context, attempt int) (*lark.ImportTaskStatus, error)

// Run calls check until it reports a status that is not in progress, an
// error, or MaxAttempts is reached. There is no wait after the last attempt.
// Cancelling ctx stops the wait between attempts and returns its cause.
func (p PollPolicy) Run(ctx context.Context, check CheckFunc) (*lark.ImportTaskStatus, error) {
	if p.MaxAttempts == 0 {
		return nil, ErrPollExhausted
	}

	attempt := 0
	operation := func() (*lark.ImportTaskStatus, error) {
		attempt++
		status, err := check(ctx, attempt)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if status.InProgress() {
			return status, errStillRunning
		}
		return status, nil
	}

	status, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Interval)),
		backoff.WithMaxTries(p.MaxAttempts),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		return status, nil
	}

	// The final attempt's error is returned without unwrapping.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return nil, permanent.Unwrap()
	}
	if errors.Is(err, errStillRunning) {
		return status, ErrPollExhausted
	}
	return nil, err
}
