package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/log"
)

const (
	// refreshAttempts bounds retries of a refresh-style fetch after a
	// transient channel reset.
	refreshAttempts = 3

	// DefaultPollInterval is the fixed interval for poll-until-state
	// operations.
	DefaultPollInterval = 500 * time.Millisecond
)

// isChannelReset reports whether err looks like a transient channel reset:
// the daemon dropped the connection between or during calls.
func isChannelReset(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed)
}

// Refresh runs fn in a fresh scoped session, retrying with a new session on
// transient channel resets up to a fixed bound. Any other error propagates
// immediately.
func Refresh(ctx context.Context, opener Opener, fn func(*Session) error) error {
	logger := log.WithComponent("transport")

	var err error
	for attempt := 1; attempt <= refreshAttempts; attempt++ {
		err = WithSession(ctx, opener, fn)
		if err == nil || !isChannelReset(err) {
			return err
		}
		logger.Debug().
			Int("attempt", attempt).
			Int("max", refreshAttempts).
			Err(err).
			Msg("channel reset during refresh, retrying")
	}
	return err
}

// PollUntil invokes probe at the given interval until it reports done.
// A positive wait sets the deadline: expiry raises TimeoutError after the
// deadline, never before. wait of zero polls indefinitely. Probe errors
// propagate immediately.
func PollUntil(ctx context.Context, op string, interval, wait time.Duration, probe func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var deadline <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return &errdefs.TimeoutError{Op: op, After: wait}
		case <-ticker.C:
		}
	}
}
