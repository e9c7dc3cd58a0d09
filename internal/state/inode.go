package state

import "sync"

// Kind distinguishes a regular file from the (sole) root directory.
type Kind int

const (
	// KindFile is a regular file inode.
	KindFile Kind = iota
	// KindDirectory is the root directory inode.
	KindDirectory
)

// Unallocated is the sentinel value for an absent block reference, the
// Go-side equivalent of the original C code's -1.
const Unallocated = -1

// Inode is one entry of the fixed inode table. Fields below i_node_type
// and i_size are guarded by RWMu; DirectBlocks has length cfg.DirectBlocks
// and Indirect is Unallocated until the file spills past its direct
// capacity.
type Inode struct {
	RWMu sync.RWMutex

	Kind         Kind
	Size         int
	DirectBlocks []int
	Indirect     int
}

// InodeTable is the fixed array of inodes plus the allocator that tracks
// which slots are live.
type InodeTable struct {
	inodes []*Inode
	free   *bitmap
	blocks *blockStore
	cfg    tableConfig
}

// tableConfig is the subset of config.Config the state layer needs,
// reproduced here instead of importing the config package directly so
// internal/state has no dependency on the public API it backs.
type tableConfig struct {
	DirectBlocks   int
	IndirectBlocks int
	BlockSize      int
}

func newInode(directBlocks int) *Inode {
	db := make([]int, directBlocks)
	for i := range db {
		db[i] = Unallocated
	}
	return &Inode{DirectBlocks: db, Indirect: Unallocated}
}

func newInodeTable(size int, cfg tableConfig, blocks *blockStore) *InodeTable {
	t := &InodeTable{
		inodes: make([]*Inode, size),
		free:   newBitmap(size),
		blocks: blocks,
		cfg:    cfg,
	}
	for i := range t.inodes {
		t.inodes[i] = newInode(cfg.DirectBlocks)
	}
	return t
}

func (t *InodeTable) validInumber(inumber int) bool {
	return inumber >= 0 && inumber < len(t.inodes)
}

// Create allocates an inode slot and initializes it per kind. For
// KindDirectory it also allocates the single data block holding the
// directory's entries and fills it with empty (-1) slots. Returns the
// inumber, or -1 if the inode table or (for a directory) the block
// allocator is exhausted.
func (t *InodeTable) Create(kind Kind, blockAlloc *bitmap, maxDirEntries, maxNameLen int) int {
	inumber := t.free.alloc()
	if inumber == -1 {
		return -1
	}

	ino := t.inodes[inumber]
	ino.RWMu.Lock()
	ino.Kind = kind

	if kind == KindDirectory {
		b := blockAlloc.alloc()
		if b == -1 {
			t.free.free(inumber)
			ino.RWMu.Unlock()
			return -1
		}
		ino.Size = t.cfg.BlockSize
		ino.DirectBlocks[0] = b
		for i := 1; i < len(ino.DirectBlocks); i++ {
			ino.DirectBlocks[i] = Unallocated
		}
		ino.Indirect = Unallocated
		ino.RWMu.Unlock()

		dirBlock := t.blocks.get(b)
		clearDirBlock(dirBlock, maxDirEntries, maxNameLen)
		return inumber
	}

	ino.Size = 0
	for i := range ino.DirectBlocks {
		ino.DirectBlocks[i] = Unallocated
	}
	ino.Indirect = Unallocated
	ino.RWMu.Unlock()
	return inumber
}

// Delete frees inumber's bitmap slot first, then takes the inode's write
// lock to free every referenced block. This ordering is load-bearing: it
// is what keeps a concurrent find_in_dir from handing out an inumber
// whose teardown is in progress. Fails on an invalid or already-free
// inumber instead of silently succeeding — unlike the data-block
// bitmap, double-freeing an inode is a caller bug that must be
// reported, not tolerated.
func (t *InodeTable) Delete(inumber int, blockFree func(int) bool) bool {
	if !t.validInumber(inumber) {
		return false
	}
	if !t.free.isTaken(inumber) {
		return false
	}
	t.free.free(inumber)

	ino := t.inodes[inumber]
	ino.RWMu.Lock()
	defer ino.RWMu.Unlock()

	if ino.Size > 0 {
		for i, b := range ino.DirectBlocks {
			if b != Unallocated {
				blockFree(b)
				ino.DirectBlocks[i] = Unallocated
			}
		}
		if ino.Indirect != Unallocated {
			indirectBlock := t.blocks.get(ino.Indirect)
			for j := 0; j < t.cfg.IndirectBlocks; j++ {
				entry := readIndexEntry(indirectBlock, j)
				if entry != Unallocated {
					blockFree(entry)
					writeIndexEntry(indirectBlock, j, Unallocated)
				}
			}
			blockFree(ino.Indirect)
			ino.Indirect = Unallocated
		}
	}
	ino.Size = 0
	return true
}

// Get returns the inode slot for inumber after a bounds check only; the
// caller is responsible for acquiring the appropriate lock mode before
// reading or mutating fields.
func (t *InodeTable) Get(inumber int) *Inode {
	if !t.validInumber(inumber) {
		return nil
	}
	return t.inodes[inumber]
}
