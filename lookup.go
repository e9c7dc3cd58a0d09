package tfs

import (
	"fmt"

	"github.com/go-ncalo/tfs/internal/state"
)

// Lookup resolves an absolute path to its inumber, or returns
// ErrNotFound if no such entry exists and ErrInvalidArgument if path is
// malformed.
func (fs *FS) Lookup(path string) (int, error) {
	if !validPathname(path) {
		return -1, fmt.Errorf("tfs: lookup %q: %w", path, ErrInvalidArgument)
	}

	root := fs.store.Inodes.Get(state.RootDirInum)
	root.RWMu.RLock()
	inum := fs.store.Inodes.FindInDir(root, componentName(path), fs.cfg.MaxDirEntries(), fs.cfg.MaxFileNameLen)
	root.RWMu.RUnlock()

	if inum == state.Unallocated {
		return -1, fmt.Errorf("tfs: lookup %q: %w", path, ErrNotFound)
	}
	return inum, nil
}

// Entry is one (name, inumber) pair of the root directory.
type Entry struct {
	Name    string
	Inumber int
}

// Entries returns a read-only snapshot of the root directory's live
// entries, taken under the directory's read-lock. Used by collaborators
// (the FUSE bridge, the export helpers) that enumerate the whole
// directory instead of resolving one name at a time.
func (fs *FS) Entries() []Entry {
	root := fs.store.Inodes.Get(state.RootDirInum)
	raw := fs.store.Inodes.Entries(root, fs.cfg.MaxDirEntries(), fs.cfg.MaxFileNameLen)
	out := make([]Entry, len(raw))
	for i, e := range raw {
		out[i] = Entry{Name: e.Name, Inumber: e.Inumber}
	}
	return out
}
