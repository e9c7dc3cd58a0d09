package tfs

import (
	"fmt"

	"github.com/go-ncalo/tfs/internal/state"
)

// Read reads up to len(buf) bytes from handle's file starting at its
// current offset, advancing the offset by the number of bytes actually
// read, and returns that count. Reading never allocates: a hole inside
// [0, size) indicates internal corruption.
func (fs *FS) Read(handle int, buf []byte) (int, error) {
	entry := fs.store.OpenFiles.Get(handle)
	if entry == nil || !fs.store.OpenFiles.IsOpen(handle) {
		return -1, fmt.Errorf("tfs: read %d: %w", handle, ErrInvalidArgument)
	}

	entry.Mu.Lock()
	defer entry.Mu.Unlock()

	ino := fs.store.Inodes.Get(entry.Inumber)
	ino.RWMu.RLock()
	defer ino.RWMu.RUnlock()

	offset := entry.Offset
	toRead := ino.Size - offset
	if toRead <= 0 {
		return 0, nil
	}
	if toRead > len(buf) {
		toRead = len(buf)
	}
	if toRead == 0 {
		return 0, nil
	}

	blockSize := fs.cfg.BlockSize
	directBlocks := fs.cfg.DirectBlocks

	firstBlock := offset / blockSize
	intra := offset % blockSize
	lastBlock := (offset + toRead - 1) / blockSize

	read := 0
	for k := firstBlock; k <= lastBlock; k++ {
		block, err := fs.resolveBlockForRead(ino, k, directBlocks)
		if err != nil {
			return -1, fmt.Errorf("tfs: read %d: %w", handle, err)
		}

		intraOff := 0
		if k == firstBlock {
			intraOff = intra
		}
		n := blockSize - intraOff
		if remain := toRead - read; n > remain {
			n = remain
		}

		copy(buf[read:read+n], block[intraOff:intraOff+n])
		entry.Offset += n
		read += n
	}
	return read, nil
}

// resolveBlockForRead returns the data block backing absolute block
// index k without allocating. The caller holds ino's read-lock.
func (fs *FS) resolveBlockForRead(ino *state.Inode, k, directBlocks int) ([]byte, error) {
	var idx int
	if k < directBlocks {
		idx = ino.DirectBlocks[k]
	} else {
		if ino.Indirect == state.Unallocated {
			return nil, fmt.Errorf("%w: hole within file size", ErrInternal)
		}
		indirectBlock := fs.store.Block(ino.Indirect)
		idx = state.ReadIndirectEntry(indirectBlock, k-directBlocks)
	}
	if idx == state.Unallocated {
		return nil, fmt.Errorf("%w: hole within file size", ErrInternal)
	}
	block := fs.store.Block(idx)
	if block == nil {
		return nil, ErrInternal
	}
	return block, nil
}
