package licensekey

import (
	"slices"
	"sync"
)

// Blocklist is a set of revoked seeds. It is safe for concurrent use; lookups
// take a read lock so verification stays cheap under a read-mostly load.
type Blocklist struct {
	mu    sync.RWMutex
	seeds map[uint64]struct{}
}

// NewBlocklist creates a blocklist holding seeds.
func NewBlocklist(seeds ...uint64) *Blocklist {
	bl := &Blocklist{seeds: make(map[uint64]struct{}, len(seeds))}
	for _, s := range seeds {
		bl.seeds[s] = struct{}{}
	}
	return bl
}

// Add blocks the given seeds.
func (bl *Blocklist) Add(seeds ...uint64) {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	if bl.seeds == nil {
		bl.seeds = make(map[uint64]struct{}, len(seeds))
	}
	for _, s := range seeds {
		bl.seeds[s] = struct{}{}
	}
}

// Remove unblocks seed. It reports whether the seed was blocked.
func (bl *Blocklist) Remove(seed uint64) bool {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	if _, ok := bl.seeds[seed]; !ok {
		return false
	}
	delete(bl.seeds, seed)
	return true
}

// Contains reports whether seed is blocked.
func (bl *Blocklist) Contains(seed uint64) bool {
	bl.mu.RLock()
	defer bl.mu.RUnlock()

	_, ok := bl.seeds[seed]
	return ok
}

// Len returns the number of blocked seeds.
func (bl *Blocklist) Len() int {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	return len(bl.seeds)
}

// Seeds returns the blocked seeds in ascending order.
func (bl *Blocklist) Seeds() []uint64 {
	bl.mu.RLock()
	out := make([]uint64, 0, len(bl.seeds))
	for s := range bl.seeds {
		out = append(out, s)
	}
	bl.mu.RUnlock()

	slices.Sort(out)
	return out
}
