package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffStaysWithinBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
}

func TestBackoffFirstAttemptNearMin(t *testing.T) {
	d := backoff(100*time.Millisecond, time.Second, 1)
	assert.GreaterOrEqual(t, d, 50*time.Millisecond)
	assert.LessOrEqual(t, d, 100*time.Millisecond)
}

func TestCompressionCodec(t *testing.T) {
	_, ok := compressionCodec("zstd")
	assert.True(t, ok)
	_, ok = compressionCodec("none")
	assert.False(t, ok)
}
