package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKeyRing_RotatesAtThreshold tests forward rotation after consecutive throttles
func TestKeyRing_RotatesAtThreshold(t *testing.T) {
	ring := NewKeyRing([]string{"primary", "backup1", "backup2"})

	assert.Equal(t, "primary", ring.Current())

	ring.OnThrottle()
	assert.Equal(t, "primary", ring.Current(), "one throttle is below threshold")

	ring.OnThrottle()
	assert.Equal(t, "backup1", ring.Current(), "threshold reached, next key")
	assert.Equal(t, 1, ring.Index())
}

// TestKeyRing_SuccessResetsCounter tests that a success clears the streak
func TestKeyRing_SuccessResetsCounter(t *testing.T) {
	ring := NewKeyRing([]string{"primary", "backup1"})

	ring.OnThrottle()
	ring.OnSuccess()
	ring.OnThrottle()
	assert.Equal(t, "primary", ring.Current(), "streak was broken by a success")
}

// TestKeyRing_NoWraparound tests that exhausted rings keep the last key
func TestKeyRing_NoWraparound(t *testing.T) {
	ring := NewKeyRing([]string{"primary", "backup1"})

	for i := 0; i < 10; i++ {
		ring.OnThrottle()
	}
	assert.Equal(t, "backup1", ring.Current())
	assert.Equal(t, 1, ring.Index(), "index never decreases or wraps")
}

// TestKeyRing_DropsEmptyKeys tests that unset backup env vars are skipped
func TestKeyRing_DropsEmptyKeys(t *testing.T) {
	ring := NewKeyRing([]string{"primary", "", "backup2"})
	assert.Equal(t, 2, ring.Len())

	ring.OnThrottle()
	ring.OnThrottle()
	assert.Equal(t, "backup2", ring.Current())
}

// TestKeyRing_Empty tests the no-keys case
func TestKeyRing_Empty(t *testing.T) {
	ring := NewKeyRing(nil)
	assert.Equal(t, "", ring.Current())
	ring.OnThrottle()
	ring.OnThrottle()
	assert.Equal(t, "", ring.Current())
}
