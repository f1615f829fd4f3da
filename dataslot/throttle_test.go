package dataslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_PacesReads(t *testing.T) {
	r, _ := newTestResident(t, 30000)
	tb := Throttle(r, 10000)

	p := make([]byte, 15000)
	start := time.Now()
	require.NoError(t, tb.ReadAt(0, 0, p))

	// the first 10000 bytes ride the initial burst, the rest costs ~500ms
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, byte(0), p[0])
}

func TestThrottle_Unlimited(t *testing.T) {
	r, _ := newTestResident(t, 1000)
	tb := Throttle(r, 0)

	start := time.Now()
	require.NoError(t, tb.ReadAt(0, 0, make([]byte, 1000)))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottle_ErrorsPassThrough(t *testing.T) {
	r, _ := newTestResident(t, 10)
	tb := Throttle(r, 100)

	require.ErrorIs(t, tb.ReadAt(0, 5, make([]byte, 10)), ErrOutOfRange)
	_, err := tb.Size(3)
	require.ErrorIs(t, err, ErrNoSlot)
}
