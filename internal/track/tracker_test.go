package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTracker(t *testing.T, retention time.Duration) *ConfirmationTracker {
	t.Helper()
	tracker := NewConfirmationTracker(retention, zap.NewNop().Sugar())
	t.Cleanup(tracker.Stop)
	return tracker
}

func TestConfirmationTracker_Resolve(t *testing.T) {
	t.Run("should return the entry when the reacting user is the recipient", func(t *testing.T) {
		tracker := newTestTracker(t, time.Hour)
		tracker.Track("111.222", "U12345", "Ana")

		conf, ok := tracker.Resolve("111.222", "U12345")

		require.True(t, ok)
		assert.Equal(t, "U12345", conf.RecipientID)
		assert.Equal(t, "Ana", conf.Name)
	})

	t.Run("should consume the entry on a successful resolve", func(t *testing.T) {
		tracker := newTestTracker(t, time.Hour)
		tracker.Track("111.222", "U12345", "Ana")

		_, ok := tracker.Resolve("111.222", "U12345")
		require.True(t, ok)

		_, ok = tracker.Resolve("111.222", "U12345")
		assert.False(t, ok)
	})

	t.Run("should reject a reaction from a different user without consuming", func(t *testing.T) {
		tracker := newTestTracker(t, time.Hour)
		tracker.Track("111.222", "U12345", "Ana")

		_, ok := tracker.Resolve("111.222", "U99999")
		assert.False(t, ok)

		_, ok = tracker.Resolve("111.222", "U12345")
		assert.True(t, ok, "the rightful recipient can still confirm afterwards")
	})

	t.Run("should return nothing for an unknown message id", func(t *testing.T) {
		tracker := newTestTracker(t, time.Hour)
		tracker.Track("111.222", "U12345", "Ana")

		_, ok := tracker.Resolve("333.444", "U12345")

		assert.False(t, ok)
	})
}

func TestConfirmationTracker_Expiry(t *testing.T) {
	t.Run("should not resolve an entry past the retention window", func(t *testing.T) {
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		originalTimeNow := timeNow
		timeNow = func() time.Time { return now }
		defer func() { timeNow = originalTimeNow }()

		tracker := newTestTracker(t, 7*24*time.Hour)
		tracker.Track("111.222", "U12345", "Ana")

		now = now.Add(7*24*time.Hour + time.Minute)

		_, ok := tracker.Resolve("111.222", "U12345")
		assert.False(t, ok)
		assert.Equal(t, 0, tracker.size(), "the expired entry is dropped on read")
	})

	t.Run("should drop expired entries during a sweep even if never resolved", func(t *testing.T) {
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		originalTimeNow := timeNow
		timeNow = func() time.Time { return now }
		defer func() { timeNow = originalTimeNow }()

		tracker := newTestTracker(t, time.Hour)
		tracker.Track("111.222", "U12345", "Ana")
		tracker.Track("333.444", "U67890", "Leo")

		now = now.Add(30 * time.Minute)
		tracker.Track("555.666", "U11111", "Marta")

		now = now.Add(45 * time.Minute)
		tracker.sweep()

		assert.Equal(t, 1, tracker.size(), "only the fresh entry survives")
		_, ok := tracker.Resolve("555.666", "U11111")
		assert.True(t, ok)
	})
}

func TestFileGuard(t *testing.T) {
	newTestGuard := func(t *testing.T, retention time.Duration) *FileGuard {
		t.Helper()
		guard := NewFileGuard(retention, zap.NewNop().Sugar())
		t.Cleanup(guard.Stop)
		return guard
	}

	t.Run("should process a file once and skip the redelivery", func(t *testing.T) {
		guard := newTestGuard(t, time.Hour)

		assert.True(t, guard.ShouldProcess("F123"))
		assert.False(t, guard.ShouldProcess("F123"))
		assert.True(t, guard.ShouldProcess("F456"), "other files are unaffected")
	})

	t.Run("should allow reprocessing after the retention window", func(t *testing.T) {
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		originalTimeNow := timeNow
		timeNow = func() time.Time { return now }
		defer func() { timeNow = originalTimeNow }()

		guard := newTestGuard(t, 24*time.Hour)
		require.True(t, guard.ShouldProcess("F123"))
		require.False(t, guard.ShouldProcess("F123"))

		now = now.Add(24*time.Hour + time.Minute)

		assert.True(t, guard.ShouldProcess("F123"))
	})

	t.Run("should drop expired markers during a sweep", func(t *testing.T) {
		now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
		originalTimeNow := timeNow
		timeNow = func() time.Time { return now }
		defer func() { timeNow = originalTimeNow }()

		guard := newTestGuard(t, time.Hour)
		guard.ShouldProcess("F123")

		now = now.Add(2 * time.Hour)
		guard.sweep()

		guard.mu.Lock()
		defer guard.mu.Unlock()
		assert.Empty(t, guard.seen)
	})
}

func Test_sweepInterval(t *testing.T) {
	assert.Equal(t, time.Second, sweepInterval(100*time.Millisecond))
	assert.Equal(t, 15*time.Minute, sweepInterval(time.Hour))
	assert.Equal(t, time.Hour, sweepInterval(7*24*time.Hour))
}
