package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ErrRetriesExhausted is returned once every attempt allowed by a policy failed.
var ErrRetriesExhausted = errors.New("resilience: retries exhausted")

// RetryPolicy bounds how often and how patiently a dependency is retried.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// Exponential doubles the delay after each failure instead of keeping it fixed.
	Exponential bool
}

// Probe checks a dependency, e.g. a database ping.
type Probe func(ctx context.Context) error

func (p RetryPolicy) backOff() backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	var b backoff.BackOff
	if p.Exponential {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = delay
		exp.Multiplier = 2
		exp.RandomizationFactor = 0
		exp.MaxInterval = 64 * delay
		exp.MaxElapsedTime = 0
		b = exp
	} else {
		b = backoff.NewConstantBackOff(delay)
	}
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

// Do runs probe until it succeeds, the attempts run out, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, name string, logger zerolog.Logger, probe Probe) error {
	attempt := 0
	op := func() error {
		attempt++
		return probe(ctx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Str("dependency", name).
			Int("attempt", attempt).
			Int("max_attempts", p.MaxAttempts).
			Dur("retry_in", wait).
			Msg("dependency not ready")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(p.backOff(), ctx), notify)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", name, ctxErr)
	}
	return fmt.Errorf("%s after %d attempts: %w: %w", name, attempt, ErrRetriesExhausted, err)
}
