package state

import "sync"

// OpenFileEntry is one slot of the open-file table: an inumber, the
// current byte offset, and a per-entry lock guarding offset mutation.
// This lock is always acquired before any inode lock within a single
// operation.
type OpenFileEntry struct {
	Mu      sync.Mutex
	Inumber int
	Offset  int
}

// OpenFileTable is the fixed array of open-file entries plus the
// allocator tracking which handles are live.
type OpenFileTable struct {
	mu      sync.Mutex // guards entries' identity (creation/destruction), not Offset
	entries []*OpenFileEntry
	free    *bitmap
}

func newOpenFileTable(size int) *OpenFileTable {
	t := &OpenFileTable{
		entries: make([]*OpenFileEntry, size),
		free:    newBitmap(size),
	}
	for i := range t.entries {
		t.entries[i] = &OpenFileEntry{}
	}
	return t
}

func (t *OpenFileTable) valid(handle int) bool {
	return handle >= 0 && handle < len(t.entries)
}

// Add finds the first free slot under both the bitmap lock and the
// table's identity lock, initializes it, and returns its handle, or -1
// if the table is full.
func (t *OpenFileTable) Add(inumber, offset int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	handle := t.free.alloc()
	if handle == -1 {
		return -1
	}
	e := t.entries[handle]
	e.Mu.Lock()
	e.Inumber = inumber
	e.Offset = offset
	e.Mu.Unlock()
	return handle
}

// Remove validates handle and marks its slot free. Returns false for an
// invalid or already-free handle.
func (t *OpenFileTable) Remove(handle int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid(handle) || !t.free.isTaken(handle) {
		return false
	}
	return t.free.free(handle)
}

// Get returns the entry for handle after a bounds check only.
func (t *OpenFileTable) Get(handle int) *OpenFileEntry {
	if !t.valid(handle) {
		return nil
	}
	return t.entries[handle]
}

// IsOpen reports whether handle currently refers to a live entry.
func (t *OpenFileTable) IsOpen(handle int) bool {
	if !t.valid(handle) {
		return false
	}
	return t.free.isTaken(handle)
}
