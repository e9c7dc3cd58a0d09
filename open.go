package tfs

import (
	"fmt"

	"github.com/go-ncalo/tfs/internal/state"
)

// Open resolves path and returns an open-file handle, creating the file
// if flags has OCreat and it does not yet exist.
//
// The target inode's write-lock (or, for creation, the root directory's
// write-lock) is held only for the duration of the truncate/append-
// offset decision or the directory insert, then released before the
// open-file-table entry is added.
func (fs *FS) Open(path string, flags OpenFlag) (int, error) {
	if !validPathname(path) {
		return -1, fmt.Errorf("tfs: open %q: %w", path, ErrInvalidArgument)
	}

	name := componentName(path)
	root := fs.store.Inodes.Get(state.RootDirInum)

	root.RWMu.RLock()
	inum := fs.store.Inodes.FindInDir(root, name, fs.cfg.MaxDirEntries(), fs.cfg.MaxFileNameLen)
	root.RWMu.RUnlock()

	var offset int

	switch {
	case inum != state.Unallocated:
		ino := fs.store.Inodes.Get(inum)
		ino.RWMu.Lock()

		if flags.Has(OTrunc) && ino.Size > 0 {
			if err := fs.truncateLocked(ino); err != nil {
				ino.RWMu.Unlock()
				return -1, err
			}
		}

		if flags.Has(OAppend) {
			offset = ino.Size
		} else {
			offset = 0
		}
		ino.RWMu.Unlock()

	case flags.Has(OCreat):
		newInum := fs.store.CreateFile()
		if newInum == -1 {
			fs.log.Printf("tfs: open %q: inode table exhausted", path)
			return -1, fmt.Errorf("tfs: open %q: %w: inode table full", path, ErrExhausted)
		}

		root.RWMu.Lock()
		ok := fs.store.Inodes.AddDirEntry(root, newInum, name, fs.cfg.MaxDirEntries(), fs.cfg.MaxFileNameLen)
		root.RWMu.Unlock()

		if !ok {
			fs.store.DeleteInode(newInum)
			fs.log.Printf("tfs: open %q: root directory full", path)
			return -1, fmt.Errorf("tfs: open %q: %w: directory full", path, ErrConflict)
		}

		inum = newInum
		offset = 0

	default:
		return -1, fmt.Errorf("tfs: open %q: %w", path, ErrNotFound)
	}

	handle := fs.store.OpenFiles.Add(inum, offset)
	if handle == -1 {
		// Simplification: if the file was just created and the
		// open-file table is full, the new directory entry is left in
		// place. Only the opposite direction — an orphan with no
		// directory entry — would be a real leak, and that case is
		// impossible here.
		fs.log.Printf("tfs: open %q: open-file table exhausted, inode %d left as orphan if newly created", path, inum)
		return -1, fmt.Errorf("tfs: open %q: %w: open-file table full", path, ErrExhausted)
	}
	return handle, nil
}

// truncateLocked frees every block referenced by ino and resets it to
// an empty file. The caller must hold ino's write-lock.
func (fs *FS) truncateLocked(ino *state.Inode) error {
	for i, b := range ino.DirectBlocks {
		if b != state.Unallocated {
			fs.store.FreeBlock(b)
			ino.DirectBlocks[i] = state.Unallocated
		}
	}
	if ino.Indirect != state.Unallocated {
		indirectBlock := fs.store.Block(ino.Indirect)
		entries := fs.cfg.IndirectBlocks()
		for j := 0; j < entries; j++ {
			entry := state.ReadIndirectEntry(indirectBlock, j)
			if entry != state.Unallocated {
				fs.store.FreeBlock(entry)
				state.WriteIndirectEntry(indirectBlock, j, state.Unallocated)
			}
		}
		fs.store.FreeBlock(ino.Indirect)
		ino.Indirect = state.Unallocated
	}
	ino.Size = 0
	return nil
}

// CloseHandle closes handle, the Go-side equivalent of the original API's
// close(fhandle). Named CloseHandle to avoid colliding with (*FS).Close.
func (fs *FS) CloseHandle(handle int) error {
	entry := fs.store.OpenFiles.Get(handle)
	if entry == nil || !fs.store.OpenFiles.IsOpen(handle) {
		return fmt.Errorf("tfs: close %d: %w", handle, ErrInvalidArgument)
	}

	ino := fs.store.Inodes.Get(entry.Inumber)
	ino.RWMu.Lock()
	ok := fs.store.OpenFiles.Remove(handle)
	ino.RWMu.Unlock()

	if !ok {
		return fmt.Errorf("tfs: close %d: %w", handle, ErrInvalidArgument)
	}
	return nil
}
