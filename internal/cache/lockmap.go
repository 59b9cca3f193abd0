package cache

import (
	"sync"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// defaultLockMapCapacity bounds how many distinct board directories can hold
// an in-process lock simultaneously before the least-recently-used one is
// evicted. Eviction only drops the lock object itself, never in-flight work:
// a board that becomes active again after eviction simply gets a fresh
// mutex.
const defaultLockMapCapacity = 256

// LockMap hands out one *sync.Mutex per board directory, serializing
// Folder.idx reads/writes and DAT reconstruction for that board (spec §5).
// It narrows the teacher's distributed-lock idea down to a single-process
// in-memory map, since this engine runs as one process (see DESIGN.md).
type LockMap struct {
	locks *util.LRU[string, *sync.Mutex]
}

// NewLockMap creates a LockMap with the default capacity.
func NewLockMap() *LockMap {
	return &LockMap{locks: util.NewLRU[string, *sync.Mutex](defaultLockMapCapacity)}
}

// Lock acquires (creating if necessary) the mutex for boardDir and returns an
// unlock function.
func (m *LockMap) Lock(boardDir string) func() {
	mu := m.locks.GetOrCreate(boardDir, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	return mu.Unlock
}
