package llm

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Defaults for the HTTP layer shared by every adapter.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultNetworkAttempts = 3
	DefaultNetworkBackoff  = 1500 * time.Millisecond
)

// RetryTransport retries requests that fail before any HTTP response is
// received (dial errors, resets). Responses of any status are returned
// as-is; status-level policy belongs to the caller.
type RetryTransport struct {
	Base            http.RoundTripper
	MaxAttempts     int
	InitialInterval time.Duration
	Logger          *zap.Logger
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	expo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(t.initialInterval()),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	)
	bo := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(t.maxAttempts()-1)), ctx)

	var resp *http.Response
	attempt := 0
	op := func() error {
		attempt++
		r := req
		if attempt > 1 {
			clone, err := rewind(req)
			if err != nil {
				return backoff.Permanent(err)
			}
			r = clone
		}

		res, err := t.base().RoundTrip(r)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			t.logger().Warn("network error calling provider",
				zap.String("host", req.URL.Host),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		resp = res
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return resp, nil
}

var errBodyNotReplayable = errors.New("request body cannot be replayed")

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func (t *RetryTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryTransport) maxAttempts() int {
	if t.MaxAttempts > 0 {
		return t.MaxAttempts
	}
	return DefaultNetworkAttempts
}

func (t *RetryTransport) initialInterval() time.Duration {
	if t.InitialInterval > 0 {
		return t.InitialInterval
	}
	return DefaultNetworkBackoff
}

func (t *RetryTransport) logger() *zap.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return zap.NewNop()
}

// NewHTTPClient returns the client every SDK adapter is built on: a
// request-level timeout over a network-retrying transport.
func NewHTTPClient(timeout time.Duration, logger *zap.Logger) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &RetryTransport{Logger: logger},
	}
}
