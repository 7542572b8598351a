package ttlcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSet_SeenRecordsOnFirstQuery(t *testing.T) {
	clock := newFakeClock()
	s := NewSet(20*time.Second, WithNowFunc(clock.Now))

	assert.False(t, s.Seen("how do you handle retries"))
	assert.True(t, s.Seen("how do you handle retries"))
	assert.False(t, s.Seen("a different sentence"))
}

func TestSet_EntriesExpireAfterTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewSet(20*time.Second, WithNowFunc(clock.Now))

	require.False(t, s.Seen("hello"))
	clock.Advance(19 * time.Second)
	assert.True(t, s.Seen("hello"))

	// Seen above did not refresh the timestamp; the original entry ages out.
	clock.Advance(2 * time.Second)
	assert.False(t, s.Seen("hello"))
}

func TestSet_ContainsDoesNotRecord(t *testing.T) {
	clock := newFakeClock()
	s := NewSet(time.Minute, WithNowFunc(clock.Now))

	assert.False(t, s.Contains("key"))
	assert.False(t, s.Seen("key"))
	assert.True(t, s.Contains("key"))
}

func TestSet_MarkRefreshes(t *testing.T) {
	clock := newFakeClock()
	s := NewSet(20*time.Second, WithNowFunc(clock.Now))

	s.Mark("key")
	clock.Advance(15 * time.Second)
	s.Mark("key")
	clock.Advance(15 * time.Second)
	assert.True(t, s.Contains("key"))
}

func TestSet_LenPrunes(t *testing.T) {
	clock := newFakeClock()
	s := NewSet(10*time.Second, WithNowFunc(clock.Now))

	s.Mark("a")
	s.Mark("b")
	require.Equal(t, 2, s.Len())

	clock.Advance(11 * time.Second)
	assert.Equal(t, 0, s.Len())
}
