package artefact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient returns queued responses in order, recording every request.
type mockHTTPClient struct {
	responses []*http.Response
	errs      []error
	requests  []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return httpResponse(http.StatusOK, `{}`), nil
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func fastRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      maxRetries,
		BaseDelay:       time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

func TestRetryerDoSucceedsFirstAttempt(t *testing.T) {
	r := NewRetryer(fastRetryPolicy(3), nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryerDoRetriesRetryableErrors(t *testing.T) {
	r := NewRetryer(fastRetryPolicy(3), nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewServiceUnavailableError("server error", "openai", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryerDoExhaustsRetries(t *testing.T) {
	r := NewRetryer(fastRetryPolicy(2), nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return NewRateLimitError("rate limited", "openai", 0, nil)
	})

	require.Error(t, err)
	// MaxRetries=2 means 3 attempts total.
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retries (2) exceeded")

	var rateLimitErr *RateLimitError
	assert.True(t, errors.As(err, &rateLimitErr))
}

func TestRetryerDoStopsOnNonRetryableError(t *testing.T) {
	r := NewRetryer(fastRetryPolicy(3), nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return NewInvalidRequestError("bad request", "openai", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var invalidErr *InvalidRequestError
	assert.True(t, errors.As(err, &invalidErr))
}

func TestRetryerDoHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:      5,
		BaseDelay:       time.Hour,
		MaxDelay:        time.Hour,
		ExponentialBase: 2.0,
	}
	r := NewRetryer(policy, nil)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, func() error {
		calls++
		return NewServiceUnavailableError("server error", "ollama", nil)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPostJSONSuccess(t *testing.T) {
	client := &mockHTTPClient{
		responses: []*http.Response{httpResponse(http.StatusOK, `{"ok":true}`)},
	}
	r := NewRetryer(fastRetryPolicy(3), nil)

	body, err := r.PostJSON(context.Background(), client, "https://api.example.com/v1/messages",
		nil, map[string]string{"model": "test"}, ProviderAnthropic)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	require.Len(t, client.requests, 1)
	assert.Equal(t, "application/json", client.requests[0].Header.Get("Content-Type"))
}

func TestPostJSONRetriesServerErrorThenSucceeds(t *testing.T) {
	client := &mockHTTPClient{
		responses: []*http.Response{
			httpResponse(http.StatusInternalServerError, `{"error":"boom"}`),
			httpResponse(http.StatusOK, `{"ok":true}`),
		},
	}
	r := NewRetryer(fastRetryPolicy(3), nil)

	body, err := r.PostJSON(context.Background(), client, "https://api.example.com/v1/messages",
		nil, map[string]string{}, ProviderOpenAI)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Len(t, client.requests, 2)
}

func TestPostJSONDoesNotRetryClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		errType any
	}{
		{"unauthorized", http.StatusUnauthorized, new(*AuthenticationError)},
		{"forbidden", http.StatusForbidden, new(*PermissionError)},
		{"bad request", http.StatusBadRequest, new(*InvalidRequestError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockHTTPClient{
				responses: []*http.Response{httpResponse(tt.status, `{"error":"nope"}`)},
			}
			r := NewRetryer(fastRetryPolicy(3), nil)

			_, err := r.PostJSON(context.Background(), client, "https://api.example.com",
				nil, map[string]string{}, ProviderOpenAI)

			require.Error(t, err)
			assert.Len(t, client.requests, 1, "client errors must not be retried")

			switch target := tt.errType.(type) {
			case **AuthenticationError:
				assert.True(t, errors.As(err, target))
			case **PermissionError:
				assert.True(t, errors.As(err, target))
			case **InvalidRequestError:
				assert.True(t, errors.As(err, target))
			}
		})
	}
}

func TestPostJSONRetriesEveryRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		client := &mockHTTPClient{
			responses: []*http.Response{
				httpResponse(status, `{}`),
				httpResponse(http.StatusOK, `{"ok":true}`),
			},
		}
		r := NewRetryer(fastRetryPolicy(3), nil)

		_, err := r.PostJSON(context.Background(), client, "https://api.example.com",
			nil, map[string]string{}, ProviderAnthropic)

		require.NoError(t, err, "status %d", status)
		assert.Len(t, client.requests, 2, "status %d should be retried once", status)
	}
}

func TestPostJSONPreservesCallerHeaders(t *testing.T) {
	headers := make(http.Header)
	headers.Set("x-api-key", "test-key")
	headers.Set("anthropic-version", "2023-06-01")

	client := &mockHTTPClient{}
	r := NewRetryer(fastRetryPolicy(0), nil)

	_, err := r.PostJSON(context.Background(), client, "https://api.anthropic.com/v1/messages",
		headers, map[string]string{}, ProviderAnthropic)

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	got := client.requests[0].Header
	assert.Equal(t, "test-key", got.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", got.Get("anthropic-version"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))

	// The shared header map must not be mutated by the request.
	assert.Empty(t, headers.Get("Content-Type"))
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestPostJSONClassifiesTransportErrors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		client := &mockHTTPClient{errs: []error{timeoutNetError{}}}
		r := NewRetryer(fastRetryPolicy(0), nil)

		_, err := r.PostJSON(context.Background(), client, "https://api.example.com",
			nil, map[string]string{}, ProviderOllama)

		require.Error(t, err)
		var timeoutErr *TimeoutError
		assert.True(t, errors.As(err, &timeoutErr))
	})

	t.Run("connection refused", func(t *testing.T) {
		client := &mockHTTPClient{errs: []error{errors.New("connection refused")}}
		r := NewRetryer(fastRetryPolicy(0), nil)

		_, err := r.PostJSON(context.Background(), client, "http://localhost:11434",
			nil, map[string]string{}, ProviderOllama)

		require.Error(t, err)
		var unavailableErr *ServiceUnavailableError
		assert.True(t, errors.As(err, &unavailableErr))
	})
}
