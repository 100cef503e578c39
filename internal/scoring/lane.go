// internal/scoring/lane.go
package scoring

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// lane is the exclusive execution slot for a single match. The buffered
// channel acts as a mutex whose blocked acquirers are served in arrival
// order; waiters counts holders plus queued callers so the entry can be
// dropped from the map once idle.
type lane struct {
	slot    chan struct{}
	waiters int
}

// LaneSet serializes mutations per match. Commands for the same match run
// one at a time in admission order; commands for different matches never
// block each other.
type LaneSet struct {
	mu    sync.Mutex
	lanes map[uuid.UUID]*lane
}

func NewLaneSet() *LaneSet {
	return &LaneSet{lanes: make(map[uuid.UUID]*lane)}
}

// WithMatchLock runs fn while holding the exclusive lane for matchID. The
// lane is released on every exit path, including fn returning an error. If
// ctx is cancelled before the lane is acquired, fn never runs and ctx.Err()
// is returned.
func (ls *LaneSet) WithMatchLock(ctx context.Context, matchID uuid.UUID, fn func(ctx context.Context) error) error {
	ls.mu.Lock()
	l, ok := ls.lanes[matchID]
	if !ok {
		l = &lane{slot: make(chan struct{}, 1)}
		ls.lanes[matchID] = l
	}
	l.waiters++
	ls.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		ls.release(matchID, l)
		return ctx.Err()
	}

	defer func() {
		<-l.slot
		ls.release(matchID, l)
	}()
	return fn(ctx)
}

func (ls *LaneSet) release(matchID uuid.UUID, l *lane) {
	ls.mu.Lock()
	l.waiters--
	if l.waiters == 0 {
		delete(ls.lanes, matchID)
	}
	ls.mu.Unlock()
}
