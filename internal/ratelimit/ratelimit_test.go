package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	krl := New(1, 3)

	// Burst tokens are available immediately.
	for i := range 3 {
		assert.True(t, krl.Allow("10.0.0.1"), "request %d should be allowed", i)
	}

	// Bucket is drained.
	assert.False(t, krl.Allow("10.0.0.1"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("10.0.0.1"))
	assert.False(t, krl.Allow("10.0.0.1"))

	// A different key has its own bucket.
	assert.True(t, krl.Allow("10.0.0.2"))
}
