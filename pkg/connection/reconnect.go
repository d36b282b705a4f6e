package connection

import (
	"errors"
	"syscall"
	"time"
)

// Fixed errors returned by BackoffPolicy when it stops reconnecting.
var (
	ErrConnectionRefused  = errors.New("connection refused by the store")
	ErrRetryTimeExhausted = errors.New("reconnect time budget exhausted")
)

const (
	backoffStep = 100 * time.Millisecond
	maxBackoff  = 3 * time.Second
)

// Action is what a ReconnectStrategy asks the connect loop to do next.
type Action int

const (
	// ActionDelay waits RetryDecision.Delay and tries again.
	ActionDelay Action = iota
	// ActionStop gives up. RetryDecision.Err is nil for a silent stop.
	ActionStop
)

// RetryDecision is the outcome of one ReconnectStrategy call.
type RetryDecision struct {
	Action Action
	Delay  time.Duration
	Err    error
}

// Delay retries after d.
func Delay(d time.Duration) RetryDecision {
	return RetryDecision{Action: ActionDelay, Delay: d}
}

// Stop gives up with err.
func Stop(err error) RetryDecision {
	return RetryDecision{Action: ActionStop, Err: err}
}

// StopSilently gives up without a fixed error; the last failure reason is
// reported instead.
func StopSilently() RetryDecision {
	return RetryDecision{Action: ActionStop}
}

// ReconnectStrategy decides, after each failed connection attempt, whether
// and when to try again. attempt starts at 1 and elapsed is measured from
// the first attempt.
type ReconnectStrategy interface {
	Next(reason error, elapsed time.Duration, attempt int) RetryDecision
}

// BackoffPolicy is the default ReconnectStrategy: stop on connection
// refused, stop once elapsed exceeds Timeout, stop after Retries attempts,
// otherwise wait attempt*100ms capped at 3s. It keeps no state between calls.
type BackoffPolicy struct {
	Timeout time.Duration
	Retries int
}

// NewBackoffPolicy builds a BackoffPolicy from component options.
func NewBackoffPolicy(opts Options) BackoffPolicy {
	return BackoffPolicy{
		Timeout: opts.Timeout,
		Retries: opts.Retries,
	}
}

// Next implements ReconnectStrategy.
func (p BackoffPolicy) Next(reason error, elapsed time.Duration, attempt int) RetryDecision {
	if IsConnectionRefused(reason) {
		return Stop(ErrConnectionRefused)
	}
	if elapsed > p.Timeout {
		return Stop(ErrRetryTimeExhausted)
	}
	if attempt > p.Retries {
		return StopSilently()
	}

	return Delay(min(time.Duration(attempt)*backoffStep, maxBackoff))
}

// IsConnectionRefused reports whether err is a refused TCP connection.
func IsConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
