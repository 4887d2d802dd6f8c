package fetch

import (
	"sync"

	"github.com/statepulse/statepulse-ingest/internal/logger"
)

// DefaultThrottleThreshold is how many consecutive throttles trigger a
// key rotation.
const DefaultThrottleThreshold = 2

// KeyRing holds the ordered API keys for one upstream source and rotates
// forward through them under sustained throttling. Rotation never wraps:
// once the last key is reached, further throttles leave it in place and
// the adapter accepts degraded throughput.
//
// A KeyRing is an explicit instance threaded into each client, never
// package-level state, so adapters in one process rotate independently.
type KeyRing struct {
	mu        sync.Mutex
	keys      []string
	index     int
	throttles int
	threshold int
}

// NewKeyRing creates a key ring over the given keys. Empty keys are
// dropped; order is preserved (primary first, then backups).
func NewKeyRing(keys []string) *KeyRing {
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	return &KeyRing{
		keys:      filtered,
		threshold: DefaultThrottleThreshold,
	}
}

// Current returns the key the next request should use, or "" when no
// keys are configured.
func (r *KeyRing) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[r.index]
}

// OnThrottle records a throttled response. Once the consecutive count
// reaches the threshold the ring advances to the next key if one
// remains; rotation takes effect on the next request, not the in-flight
// one, because callers rebuild the URL per attempt.
func (r *KeyRing) OnThrottle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.throttles++
	if r.throttles < r.threshold {
		return
	}
	r.throttles = 0

	if r.index < len(r.keys)-1 {
		r.index++
		logger.Info("Rotating to backup API key #%d", r.index+1)
	} else {
		logger.Warn("All API keys exhausted. Continuing with last key.")
	}
}

// OnSuccess resets the consecutive-throttle counter.
func (r *KeyRing) OnSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.throttles = 0
}

// Len returns the number of configured keys.
func (r *KeyRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Index returns the zero-based index of the active key.
func (r *KeyRing) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}
