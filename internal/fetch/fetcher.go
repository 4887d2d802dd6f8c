package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/logger"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for transient network errors.
	// Throttled responses do not consume it.
	DefaultMaxRetries = 3

	// DefaultBackoff is the initial delay before a retry; it doubles on
	// every network-class failure.
	DefaultBackoff = 2 * time.Second

	// DefaultMaxThrottles caps consecutive 429s under ThrottleRotate.
	// Past it the fetcher gives up so the adapter can checkpoint and let
	// the next scheduled run resume after the cooldown.
	DefaultMaxThrottles = 5
)

// ThrottlePolicy selects how the fetcher reacts to HTTP 429.
type ThrottlePolicy int

const (
	// ThrottleRotate notifies the key ring, sleeps and retries in place.
	// Used by the daily adapters, which rebuild URLs with the rotated key.
	ThrottleRotate ThrottlePolicy = iota

	// ThrottleFail returns a RateLimitError immediately. Used by the
	// historical backfill, which checkpoints and defers to its outer
	// retry loop instead of burning time in place.
	ThrottleFail
)

// Options configures a Fetcher.
type Options struct {
	// Client is the HTTP client; a default with DefaultTimeout is used
	// when nil.
	Client *http.Client

	// RequestsPerSecond proactively paces requests to stay under the
	// upstream budget. Zero disables pacing.
	RequestsPerSecond float64

	// MaxRetries and Backoff override the retry defaults when non-zero.
	MaxRetries int
	Backoff    time.Duration

	// MaxThrottles overrides DefaultMaxThrottles when non-zero. Only
	// meaningful under ThrottleRotate.
	MaxThrottles int

	// Policy selects the 429 behaviour.
	Policy ThrottlePolicy

	// Keys drives throttle rotation. Optional; without it 429s are
	// retried after the backoff with no rotation.
	Keys *KeyRing
}

// Fetcher wraps HTTP GETs with retry, backoff and 429-aware rotation
// signalling. It has no side effects beyond HTTP I/O and the key ring
// callbacks; any non-2xx status other than 429 is returned to the
// caller as a response, not an error, so adapters can treat 404 as
// "no more pages".
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	backoff      time.Duration
	maxThrottles int
	policy       ThrottlePolicy
	keys         *KeyRing
}

// New creates a Fetcher from options.
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	maxThrottles := opts.MaxThrottles
	if maxThrottles == 0 {
		maxThrottles = DefaultMaxThrottles
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Fetcher{
		client:       client,
		limiter:      limiter,
		maxRetries:   maxRetries,
		backoff:      backoff,
		maxThrottles: maxThrottles,
		policy:       opts.Policy,
		keys:         opts.Keys,
	}
}

// Get fetches the URL produced by urlFor. The builder is re-evaluated on
// every attempt so a key rotated mid-backoff takes effect on the next
// request. The caller owns the response body.
func (f *Fetcher) Get(ctx context.Context, urlFor func() string) (*http.Response, error) {
	retries := f.maxRetries
	backoff := f.backoff
	throttled := 0

	for {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		reqURL := urlFor()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if retries == 0 {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrExhaustedRetries, RedactKey(reqURL), err)
			}
			retries--
			logger.Warn("Network error fetching %s, retrying in %s (%d attempts left): %v",
				RedactKey(reqURL), backoff, retries+1, err)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			throttled++

			if f.policy == ThrottleFail || throttled >= f.maxThrottles {
				return nil, &RateLimitError{URL: RedactKey(reqURL), Consecutive: throttled}
			}

			logger.Warn("Rate limit hit (%d consecutive), backing off %s", throttled, backoff)
			if f.keys != nil {
				f.keys.OnThrottle()
			}
			// 429 does not consume the retry budget: the endpoint is
			// reachable, it just wants us slower or on another key.
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			continue
		}

		if f.keys != nil {
			f.keys.OnSuccess()
		}
		return resp, nil
	}
}

// GetJSON fetches and decodes a JSON body. Non-2xx statuses are returned
// as the status code with a nil decode, letting callers interpret them.
func (f *Fetcher) GetJSON(ctx context.Context, urlFor func() string, v any) (int, error) {
	resp, err := f.Get(ctx, urlFor)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// RedactKey strips api key query parameters from a URL for logging.
func RedactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, param := range []string{"api_key", "apikey", "key"} {
		if q.Has(param) {
			q.Set(param, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
