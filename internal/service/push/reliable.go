package push

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

type Policy struct {
	Timeout         time.Duration
	MaxAttempts     uint
	RatePerSecond   float64
	Burst           int
	InitialInterval time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Timeout:         3 * time.Second,
		MaxAttempts:     3,
		RatePerSecond:   20,
		Burst:           10,
		InitialInterval: 200 * time.Millisecond,
	}
}

// ReliableSender wraps a provider with a shared rate limit, a per-attempt
// timeout and bounded exponential retry. Unregistered tokens are not retried.
type ReliableSender struct {
	next    Sender
	policy  Policy
	limiter *rate.Limiter
}

func NewReliableSender(next Sender, policy Policy) *ReliableSender {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultPolicy().InitialInterval
	}
	limit := rate.Inf
	if policy.RatePerSecond > 0 {
		limit = rate.Limit(policy.RatePerSecond)
	}
	burst := policy.Burst
	if burst < 1 {
		burst = 1
	}
	return &ReliableSender{
		next:    next,
		policy:  policy,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (s *ReliableSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	attempts := 0
	operation := func() (struct{}, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempts++

		attemptCtx := ctx
		if s.policy.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.policy.Timeout)
			defer cancel()
		}

		err := s.next.Send(attemptCtx, token, title, body, data)
		if errors.Is(err, ErrUnregistered) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.policy.InitialInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(s.policy.MaxAttempts),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnregistered) {
		return err
	}
	return &DeliveryError{Attempts: attempts, Err: err}
}
