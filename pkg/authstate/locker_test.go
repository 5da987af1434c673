package authstate

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathLocker_MutualExclusion(t *testing.T) {
	pl := NewPathLocker()
	path := filepath.Join(t.TempDir(), "record.json")

	const numGoroutines = 10
	var (
		wg       sync.WaitGroup
		inside   int
		observed int
		mu       sync.Mutex
	)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release := pl.Acquire(path)
			defer release()

			mu.Lock()
			inside++
			if inside > observed {
				observed = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, observed, "critical section must never be shared")
}

func TestPathLocker_GrantsInArrivalOrder(t *testing.T) {
	pl := NewPathLocker()
	path := filepath.Join(t.TempDir(), "record.json")

	holder := pl.Acquire(path)

	const numWaiters = 3
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)

	// Stagger arrivals so each waiter is queued before the next one starts
	for i := 0; i < numWaiters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			release := pl.Acquire(path)
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			release()
		}(i)
		time.Sleep(50 * time.Millisecond)
	}

	holder()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPathLocker_DistinctPathsDoNotBlock(t *testing.T) {
	pl := NewPathLocker()
	dir := t.TempDir()

	releaseA := pl.Acquire(filepath.Join(dir, "a.json"))
	defer releaseA()

	acquired := make(chan struct{})
	go func() {
		releaseB := pl.Acquire(filepath.Join(dir, "b.json"))
		close(acquired)
		releaseB()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire on a different path should not block")
	}
}

func TestPathLocker_NormalizesPaths(t *testing.T) {
	pl := NewPathLocker()
	dir := t.TempDir()

	release := pl.Acquire(filepath.Join(dir, "sub", "..", "record.json"))

	acquired := make(chan struct{})
	go func() {
		other := pl.Acquire(filepath.Join(dir, "record.json"))
		close(acquired)
		other()
	}()

	// Same record through a different spelling must share the lock
	select {
	case <-acquired:
		t.Fatal("equivalent paths should map to the same lock")
	case <-time.After(100 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock never granted after release")
	}

	assert.Equal(t, 1, pl.Len())
}

func TestPathLocker_ReleaseIdempotent(t *testing.T) {
	pl := NewPathLocker()
	path := filepath.Join(t.TempDir(), "record.json")

	release := pl.Acquire(path)
	release()
	release()

	again := pl.Acquire(path)
	require.NotNil(t, again)
	again()
}

func TestPathLocker_Len(t *testing.T) {
	pl := NewPathLocker()
	dir := t.TempDir()

	assert.Equal(t, 0, pl.Len())

	first := pl.Acquire(filepath.Join(dir, "a.json"))
	first()
	second := pl.Acquire(filepath.Join(dir, "b.json"))
	second()
	third := pl.Acquire(filepath.Join(dir, "a.json"))
	third()

	// Entries are reused, never removed
	assert.Equal(t, 2, pl.Len())
}
