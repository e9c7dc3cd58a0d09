// Package state implements the concurrent core of tfs: the block store,
// the free-block and free-inode allocators, the inode table, the root
// directory's entries, and the open-file table. Everything above this
// package (path resolution, open/read/write) lives in the root tfs
// package and only ever touches these types through their exported
// methods and fields, never their unexported internals.
package state

// Sizing is the subset of config.Config the state layer needs. It is a
// plain struct (rather than an import of the config package) so this
// package has no dependency on the public API it backs.
type Sizing struct {
	BlockSize      int
	DataBlocks     int
	InodeTableSize int
	MaxOpenFiles   int
	DirectBlocks   int
	MaxFileNameLen int
	IndirectBlocks int
	MaxDirEntries  int
}

// Store aggregates every table of a single tfs instance.
type Store struct {
	Sizing

	blocks    *blockStore
	blockFree *bitmap
	Inodes    *InodeTable
	OpenFiles *OpenFileTable
}

// New builds a fully initialized Store, including the root directory
// inode at RootDirInum. Returns an error only if the root directory's
// own block allocation fails, which cannot happen on a freshly built
// store with DataBlocks >= 1.
func New(s Sizing) (*Store, error) {
	blocks := newBlockStore(s.BlockSize, s.DataBlocks)
	blockFree := newBitmap(s.DataBlocks)

	cfg := tableConfig{
		DirectBlocks:   s.DirectBlocks,
		IndirectBlocks: s.IndirectBlocks,
		BlockSize:      s.BlockSize,
	}
	inodes := newInodeTable(s.InodeTableSize, cfg, blocks)
	openFiles := newOpenFileTable(s.MaxOpenFiles)

	st := &Store{
		Sizing:    s,
		blocks:    blocks,
		blockFree: blockFree,
		Inodes:    inodes,
		OpenFiles: openFiles,
	}

	root := inodes.Create(KindDirectory, blockFree, s.MaxDirEntries, s.MaxFileNameLen)
	if root != RootDirInum {
		return nil, ErrRootCreationFailed
	}
	return st, nil
}

// CreateFile allocates a new file inode.
func (st *Store) CreateFile() int {
	return st.Inodes.Create(KindFile, st.blockFree, st.MaxDirEntries, st.MaxFileNameLen)
}

// DeleteInode frees inumber and every block it references.
func (st *Store) DeleteInode(inumber int) bool {
	return st.Inodes.Delete(inumber, st.blockFree.free)
}

// AllocBlock allocates one data block.
func (st *Store) AllocBlock() int {
	return st.blockFree.alloc()
}

// FreeBlock frees data block i.
func (st *Store) FreeBlock(i int) bool {
	return st.blockFree.free(i)
}

// Block returns the blockSize-byte slice backing block i, or nil if i
// is out of range.
func (st *Store) Block(i int) []byte {
	return st.blocks.get(i)
}

// RootDirInum is the root directory's fixed inumber.
const RootDirInum = 0
