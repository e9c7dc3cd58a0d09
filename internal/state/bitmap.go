package state

import "sync"

// bitmap is a fixed-size first-fit allocator guarded by a single mutex.
// It backs the inode, data-block, and open-file-entry allocators:
// coarse locking is intentional here, the scans are short and per-bit
// locking would only add overhead.
type bitmap struct {
	mu    sync.Mutex
	taken []bool
}

func newBitmap(size int) *bitmap {
	return &bitmap{taken: make([]bool, size)}
}

// alloc scans for the lowest free slot, marks it taken, and returns its
// index, or -1 if every slot is taken.
func (b *bitmap) alloc() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.taken {
		if !t {
			b.taken[i] = true
			return i
		}
	}
	return -1
}

// free marks i as free. Freeing an out-of-range index reports false;
// freeing an already-free slot is a silent no-op, matching the original
// C allocator's behavior for data blocks. This is a documented wart,
// not a bug: the caller is expected to never double-free a live index.
// InodeTable.Delete does not rely on this leniency — it checks isTaken
// itself and fails loudly on a double delete.
func (b *bitmap) free(i int) bool {
	if i < 0 || i >= len(b.taken) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taken[i] = false
	return true
}

// isTaken reports whether i is currently allocated; out-of-range indices
// report false. Used by InodeTable.Delete and the open-file table to
// reject already-free slots, and by invariant checks in tests.
func (b *bitmap) isTaken(i int) bool {
	if i < 0 || i >= len(b.taken) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.taken[i]
}

func (b *bitmap) size() int {
	return len(b.taken)
}
