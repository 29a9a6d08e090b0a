package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaverFlushesPeriodically(t *testing.T) {
	b, fake, store, _ := newTestBot(t)
	setupSeason(t, b, fake, "Fall")

	saver := NewSaver(b.registry, store, 20*time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- saver.Start() }()

	require.Eventually(t, func() bool {
		return store.saveCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	saver.Stop()
	require.NoError(t, <-done)

	recs, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Fall", recs[0].Name)
}

func TestSaverStopPerformsFinalSave(t *testing.T) {
	b, fake, store, _ := newTestBot(t)
	setupSeason(t, b, fake, "Fall")

	// Interval far beyond the test's lifetime: only the final save runs.
	saver := NewSaver(b.registry, store, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- saver.Start() }()

	// Give the loop a moment to come up, then stop it.
	time.Sleep(20 * time.Millisecond)
	saver.Stop()
	require.NoError(t, <-done)

	assert.Equal(t, 1, store.saveCount())
}

func TestSaverKeepsRunningAfterFailedSave(t *testing.T) {
	b, fake, store, _ := newTestBot(t)
	setupSeason(t, b, fake, "Fall")
	store.saveErr = assert.AnError

	saver := NewSaver(b.registry, store, 20*time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- saver.Start() }()

	time.Sleep(100 * time.Millisecond)
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()

	require.Eventually(t, func() bool {
		return store.saveCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	saver.Stop()
	require.NoError(t, <-done)
}
