// internal/scoring/lane_test.go
package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMatchLockFIFOOrdering(t *testing.T) {
	lanes := NewLaneSet()
	matchID := uuid.New()
	ctx := context.Background()

	var mu sync.Mutex
	var order []int

	gate := make(chan struct{})
	var wg sync.WaitGroup

	// Hold the lane so subsequent callers queue behind it.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = lanes.WithMatchLock(ctx, matchID, func(context.Context) error {
			<-gate
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lanes.WithMatchLock(ctx, matchID, func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Space out arrivals so admission order is deterministic.
		time.Sleep(20 * time.Millisecond)
	}

	close(gate)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWithMatchLockDifferentMatchesRunInParallel(t *testing.T) {
	lanes := NewLaneSet()
	ctx := context.Background()

	blocked := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = lanes.WithMatchLock(ctx, uuid.New(), func(context.Context) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	done := make(chan struct{})
	go func() {
		_ = lanes.WithMatchLock(ctx, uuid.New(), func(context.Context) error {
			close(done)
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated match was blocked by another match's lane")
	}
	close(release)
}

func TestWithMatchLockReleasesOnError(t *testing.T) {
	lanes := NewLaneSet()
	matchID := uuid.New()
	ctx := context.Background()

	wantErr := errors.New("persistence failed")
	err := lanes.WithMatchLock(ctx, matchID, func(context.Context) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// The lane must be usable for the next command.
	done := make(chan struct{})
	go func() {
		_ = lanes.WithMatchLock(ctx, matchID, func(context.Context) error {
			close(done)
			return nil
		})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lane was not released after an error")
	}
}

func TestWithMatchLockContextCancelledWhileQueued(t *testing.T) {
	lanes := NewLaneSet()
	matchID := uuid.New()

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = lanes.WithMatchLock(context.Background(), matchID, func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := lanes.WithMatchLock(ctx, matchID, func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran, "fn must not run when admission is cancelled")
	close(release)
}

func TestLaneMapShrinksWhenIdle(t *testing.T) {
	lanes := NewLaneSet()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, lanes.WithMatchLock(ctx, uuid.New(), func(context.Context) error {
			return nil
		}))
	}

	lanes.mu.Lock()
	defer lanes.mu.Unlock()
	assert.Empty(t, lanes.lanes, "idle lanes should be dropped from the map")
}
