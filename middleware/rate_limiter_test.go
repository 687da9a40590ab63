package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiterBlocksAfterBurst(t *testing.T) {
	l := newIPLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, l.allow("10.0.0.1"))

	// Separate IPs get separate buckets
	assert.True(t, l.allow("10.0.0.2"))
}

func TestIPLimiterSweepEvictsIdle(t *testing.T) {
	l := newIPLimiter(1, 1, 10*time.Millisecond)

	l.allow("10.0.0.1")
	time.Sleep(20 * time.Millisecond)
	l.sweep()

	l.mu.Lock()
	_, ok := l.visitors["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, ok)
}
