package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

func fastFetcher(opts Options) *Fetcher {
	opts.Backoff = time.Millisecond
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	return New(opts)
}

// TestFetcher_Success tests the plain happy path
func TestFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := fastFetcher(Options{})
	resp, err := f.Get(context.Background(), func() string { return srv.URL })
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestFetcher_NonOKReturnedAsResponse tests that 404 is not an error
func TestFetcher_NonOKReturnedAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := fastFetcher(Options{})
	resp, err := f.Get(context.Background(), func() string { return srv.URL })
	require.NoError(t, err, "callers decide how to interpret non-OK statuses")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestFetcher_RotateOn429 tests that throttling notifies the ring and retries
func TestFetcher_RotateOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ring := NewKeyRing([]string{"primary", "backup"})
	f := fastFetcher(Options{Policy: ThrottleRotate, Keys: ring})

	resp, err := f.Get(context.Background(), func() string { return srv.URL + "?apikey=" + ring.Current() })
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "backup", ring.Current(), "two consecutive 429s rotate the key")
	assert.Equal(t, int32(3), calls.Load())
}

// TestFetcher_429DoesNotConsumeRetryBudget tests budget accounting
func TestFetcher_429DoesNotConsumeRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// More 429s than the retry budget, then success
		if calls.Add(1) <= 5 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := fastFetcher(Options{Policy: ThrottleRotate, MaxRetries: 2, MaxThrottles: 10})
	resp, err := f.Get(context.Background(), func() string { return srv.URL })
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFetcher_RotatePolicyGivesUpAfterMaxThrottles(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := fastFetcher(Options{Policy: ThrottleRotate, MaxThrottles: 3})
	_, err := f.Get(context.Background(), func() string { return srv.URL })

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(3), calls.Load())
}

// TestFetcher_FailPolicyReturnsRateLimitError tests the backfill policy
func TestFetcher_FailPolicyReturnsRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := fastFetcher(Options{Policy: ThrottleFail})
	_, err := f.Get(context.Background(), func() string { return srv.URL })
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 1, rlErr.Consecutive)
}

// TestFetcher_ExhaustedRetries tests the network-error retry budget
func TestFetcher_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // immediately closed: every request fails at the dial

	f := fastFetcher(Options{MaxRetries: 2})
	_, err := f.Get(context.Background(), func() string { return srv.URL })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExhaustedRetries)
}

// TestFetcher_URLRebuiltPerAttempt tests that rotation affects the next request
func TestFetcher_URLRebuiltPerAttempt(t *testing.T) {
	var keysSeen []string
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keysSeen = append(keysSeen, r.URL.Query().Get("apikey"))
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ring := NewKeyRing([]string{"k1", "k2"})
	f := fastFetcher(Options{Policy: ThrottleRotate, Keys: ring})

	resp, err := f.Get(context.Background(), func() string { return srv.URL + "?apikey=" + ring.Current() })
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, keysSeen, 3)
	assert.Equal(t, "k1", keysSeen[0])
	assert.Equal(t, "k1", keysSeen[1], "rotation happens after the second 429")
	assert.Equal(t, "k2", keysSeen[2], "rotated key used on the next attempt")
}

// TestGetJSON tests decoding and non-OK passthrough
func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"name":"SB 1"}`))
	}))
	defer srv.Close()

	f := fastFetcher(Options{})

	var out struct {
		Name string `json:"name"`
	}
	status, err := f.GetJSON(context.Background(), func() string { return srv.URL }, &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SB 1", out.Name)

	status, err = f.GetJSON(context.Background(), func() string { return srv.URL + "/missing" }, &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

// TestRedactKey tests key scrubbing for logs
func TestRedactKey(t *testing.T) {
	redacted := RedactKey("https://api.example.gov/v3/bill/118?api_key=secret&format=json")
	assert.NotContains(t, redacted, "secret")
	assert.Contains(t, redacted, "api_key=REDACTED")
}
