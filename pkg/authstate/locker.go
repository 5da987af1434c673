package authstate

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harun/walet/internal/observability"
)

// LockQueueDepth is the bound on each lock's wait queue. Zero means
// unbounded: waiters are never rejected due to backlog.
const LockQueueDepth = 0

// PathLocker serializes operations per normalized file path. Each path gets
// a one slot gate created on first use; gates are never removed, so the
// table grows with the number of distinct paths touched. Blocked acquirers
// are granted a gate in arrival order.
type PathLocker struct {
	gates sync.Map
	size  atomic.Int64
}

// NewPathLocker creates an empty lock table.
func NewPathLocker() *PathLocker {
	observability.EnsureRegistered()
	return &PathLocker{}
}

// Acquire blocks until the lock for path is free, then grants exclusive
// ownership and returns the paired release function. Release is idempotent.
func (pl *PathLocker) Acquire(path string) (release func()) {
	key := filepath.Clean(path)

	entry, loaded := pl.gates.LoadOrStore(key, make(chan struct{}, 1))
	if !loaded {
		observability.SetLockTableSize(int(pl.size.Add(1)))
	}
	gate := entry.(chan struct{})

	start := time.Now()
	gate <- struct{}{}
	observability.RecordLockWait(time.Since(start))

	var once sync.Once
	return func() {
		once.Do(func() { <-gate })
	}
}

// Len returns the number of distinct paths in the table.
func (pl *PathLocker) Len() int {
	return int(pl.size.Load())
}
