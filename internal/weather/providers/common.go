package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff between retried attempts.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// httpStatusError marks a non-2xx response that is not worth retrying
// (4xx other than 429). It still counts against the circuit breaker.
type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.code)
}

// resilientClient wraps an http.Client with a circuit breaker and bounded
// exponential backoff. Rate limiting, 5xx responses and transport errors are
// retried; other non-2xx responses fail fast so the caller can skip the city
// without waiting out the backoff schedule.
type resilientClient struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	backoff BackoffConfig
}

func newResilientClient(client *http.Client, cb *gobreaker.CircuitBreaker, backoff BackoffConfig) *resilientClient {
	if client == nil {
		client = http.DefaultClient
	}
	if backoff.InitialInterval <= 0 {
		backoff.InitialInterval = 500 * time.Millisecond
	}
	return &resilientClient{
		client:  client,
		circuit: cb,
		backoff: backoff,
	}
}

// do executes the request built by buildRequest, retrying per the backoff
// schedule. The caller owns the returned response body.
func (rc *resilientClient) do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := rc.circuit.Execute(func() (interface{}, error) {
			resp, execErr := rc.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, &httpStatusError{code: resp.StatusCode}
			}
			return resp, nil
		})

		if err == nil {
			return result.(*http.Response), nil
		}

		// An open breaker means the upstream is known-bad; fail immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		if attempt >= rc.backoff.MaxRetries {
			return nil, err
		}

		delay := rc.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if rc.backoff.MaxInterval > 0 && delay > rc.backoff.MaxInterval {
			delay = rc.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
