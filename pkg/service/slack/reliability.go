package slack

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit   = rate.Limit(1)
	defaultRateBurst   = 5
	defaultAttempts    = 3
	defaultCallTimeout = 10 * time.Second
)

// guard serializes Slack Web API calls through a rate limiter, a circuit
// breaker and retries
type guard struct {
	limiter     *rate.Limiter
	cb          *gobreaker.CircuitBreaker
	attempts    uint
	callTimeout time.Duration
}

func newGuard(limit rate.Limit, burst int, attempts uint) *guard {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "slack-web-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isHealthyResponse,
	})

	return &guard{
		limiter:     rate.NewLimiter(limit, burst),
		cb:          cb,
		attempts:    attempts,
		callTimeout: defaultCallTimeout,
	}
}

// do runs call once the limiter admits it. Transport errors and rate limit
// responses are retried; Slack API errors such as invalid_auth are not.
func (g *guard) do(ctx context.Context, method string, call func(ctx context.Context) error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "rate limit wait aborted", goerr.V("method", method))
	}

	_, err := g.cb.Execute(func() (any, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(g.attempts),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				var rateErr *slack.RateLimitedError
				if errors.As(err, &rateErr) {
					return rateErr.RetryAfter
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		return nil, r.Do(func() error {
			callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
			defer cancel()

			err := call(callCtx)
			if err != nil && !isRetryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		})
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return goerr.Wrap(err, "slack API circuit is open", goerr.V("method", method))
	}
	if err != nil {
		return goerr.Wrap(err, "slack API call failed", goerr.V("method", method))
	}
	return nil
}

func isRetryable(err error) bool {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return false
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}

// isHealthyResponse reports whether err leaves the breaker closed. Slack
// answering with an API error such as invalid_auth means the service is up,
// and a caller giving up says nothing about Slack either.
func isHealthyResponse(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var slackErr slack.SlackErrorResponse
	return errors.As(err, &slackErr)
}
