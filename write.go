package tfs

import (
	"fmt"

	"github.com/go-ncalo/tfs/internal/state"
)

// Write writes buf to handle's file starting at its current offset,
// advancing the offset by the number of bytes actually written, and
// returns that count.
//
// Growth policy: a write may extend the file up to the logical capacity
// DirectBlocks*BlockSize + IndirectBlocks*BlockSize. A write that starts
// at or past that boundary fails outright; a write that starts before
// the boundary but would cross it is truncated to the boundary and
// returns a partial byte count rather than failing.
func (fs *FS) Write(handle int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	entry := fs.store.OpenFiles.Get(handle)
	if entry == nil || !fs.store.OpenFiles.IsOpen(handle) {
		return -1, fmt.Errorf("tfs: write %d: %w", handle, ErrInvalidArgument)
	}

	entry.Mu.Lock()
	defer entry.Mu.Unlock()

	ino := fs.store.Inodes.Get(entry.Inumber)
	ino.RWMu.Lock()
	defer ino.RWMu.Unlock()

	blockSize := fs.cfg.BlockSize
	directBlocks := fs.cfg.DirectBlocks
	indirectBlocks := fs.cfg.IndirectBlocks()
	capacity := fs.cfg.Capacity()

	offset := entry.Offset
	if offset >= capacity {
		return -1, fmt.Errorf("tfs: write %d: %w: past file capacity", handle, ErrExhausted)
	}

	toWrite := len(buf)
	if remaining := capacity - offset; toWrite > remaining {
		toWrite = remaining
	}

	firstBlock := offset / blockSize
	intra := offset % blockSize
	lastBlock := (offset + toWrite - 1) / blockSize

	if lastBlock >= directBlocks && ino.Indirect == state.Unallocated {
		b := fs.store.AllocBlock()
		if b == -1 {
			fs.log.Printf("tfs: write %d: block store exhausted allocating indirect block", handle)
			return -1, fmt.Errorf("tfs: write %d: %w: no free blocks for indirect block", handle, ErrExhausted)
		}
		ino.Indirect = b
		state.ClearIndirectBlock(fs.store.Block(b), indirectBlocks)
	}

	written := 0
	for k := firstBlock; k <= lastBlock; k++ {
		block, err := fs.resolveBlockForWrite(ino, k, directBlocks)
		if err != nil {
			return -1, fmt.Errorf("tfs: write %d: %w", handle, err)
		}

		intraOff := 0
		if k == firstBlock {
			intraOff = intra
		}
		n := blockSize - intraOff
		if remain := toWrite - written; n > remain {
			n = remain
		}

		copy(block[intraOff:intraOff+n], buf[written:written+n])
		entry.Offset += n
		written += n
	}

	if entry.Offset > ino.Size {
		ino.Size = entry.Offset
	}
	return written, nil
}

// resolveBlockForWrite returns the data block backing absolute block
// index k, allocating it on demand. The caller holds ino's write-lock.
func (fs *FS) resolveBlockForWrite(ino *state.Inode, k, directBlocks int) ([]byte, error) {
	if k < directBlocks {
		if ino.DirectBlocks[k] == state.Unallocated {
			b := fs.store.AllocBlock()
			if b == -1 {
				return nil, fmt.Errorf("%w: no free data blocks", ErrExhausted)
			}
			ino.DirectBlocks[k] = b
		}
		block := fs.store.Block(ino.DirectBlocks[k])
		if block == nil {
			return nil, ErrInternal
		}
		return block, nil
	}

	j := k - directBlocks
	indirectBlock := fs.store.Block(ino.Indirect)
	idx := state.ReadIndirectEntry(indirectBlock, j)
	if idx == state.Unallocated {
		b := fs.store.AllocBlock()
		if b == -1 {
			return nil, fmt.Errorf("%w: no free data blocks", ErrExhausted)
		}
		state.WriteIndirectEntry(indirectBlock, j, b)
		idx = b
	}
	block := fs.store.Block(idx)
	if block == nil {
		return nil, ErrInternal
	}
	return block, nil
}
