package artefact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Retryer executes fallible operations with exponential backoff.
//
// Only a bounded set of conditions triggers a retry: transport failures
// (timeouts, connection errors) and HTTP status codes 429, 500, 502, 503 and
// 504. Anything else propagates immediately.
type Retryer struct {
	policy RetryPolicy
	logger *slog.Logger
}

// NewRetryer creates a Retryer with the given policy.
// A nil logger falls back to slog.Default().
func NewRetryer(policy RetryPolicy, logger *slog.Logger) *Retryer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retryer{policy: policy, logger: logger}
}

// Do invokes op up to MaxRetries+1 times.
//
// Between attempts it sleeps for the policy's backoff delay, honoring
// context cancellation. After exhausting retries the last failure is
// returned wrapped; it is never swallowed.
func (r *Retryer) Do(ctx context.Context, op func() error) error {
	var lastErr error

	maxRetries := r.policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if attempt == maxRetries {
			r.logger.Error("all attempts failed",
				"attempts", maxRetries+1,
				"error", err)
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		delay := r.policy.DelayFor(attempt)
		r.logger.Warn("attempt failed, retrying",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// PostJSON POSTs a JSON payload through the retry loop and returns the
// response body on HTTP 200.
//
// Non-retryable statuses surface as typed errors on the first attempt;
// retryable statuses (429, 5xx) and transport failures are retried per the
// policy and then surfaced.
func (r *Retryer) PostJSON(ctx context.Context, client HTTPClient, url string, headers http.Header, payload any, provider string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header = headers.Clone()
		if httpReq.Header == nil {
			httpReq.Header = make(http.Header)
		}
		if httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		httpResp, err := client.Do(httpReq)
		if err != nil {
			return classifyTransportError(provider, err)
		}
		defer httpResp.Body.Close()

		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return NewTimeoutError(fmt.Sprintf("failed to read response: %v", err), provider, err)
		}

		if httpResp.StatusCode != http.StatusOK {
			return ParseProviderError(provider, httpResp.StatusCode, raw, nil)
		}

		respBody = raw
		return nil
	}

	if err := r.Do(ctx, op); err != nil {
		return nil, err
	}
	return respBody, nil
}

// classifyTransportError maps a transport-level failure to the taxonomy.
// Timeouts and connection errors are retryable.
func classifyTransportError(provider string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(fmt.Sprintf("request timed out: %v", err), provider, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(fmt.Sprintf("request timed out: %v", err), provider, err)
	}
	// Connection refused, DNS failure, reset: all transient transport errors.
	return NewServiceUnavailableError(fmt.Sprintf("request failed: %v", err), provider, err)
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	type retryable interface {
		IsRetryable() bool
	}

	var retryableErr retryable
	if errors.As(err, &retryableErr) {
		return retryableErr.IsRetryable()
	}

	return false
}
