package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/GhadiSaab/savedfeast-client/internal/api"
	"github.com/GhadiSaab/savedfeast-client/internal/logging"
)

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs fn up to MaxAttempts times. Responses carrying 401, 403 or 404
// are not transient and are returned after the first attempt; everything
// else backs off exponentially, capped at MaxDelay, between attempts.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		switch api.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return zero, err
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.BaseDelay << attempt
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		logging.FromContext(ctx).Debug("retrying", "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
