// Package tfs implements a small, in-memory UNIX-style file system core:
// one flat root directory of regular files, a fixed inode table, and a
// fixed-size block store addressed through direct references plus one
// indirect index block. All state is process-lifetime only — there is
// no persistence to secondary storage.
package tfs

import (
	"log"

	"github.com/go-ncalo/tfs/config"
	"github.com/go-ncalo/tfs/internal/state"
)

// FS is a single tfs instance: a complete set of tables, safe for
// concurrent use from many goroutines. Construct with New; there is no
// shared global state, unlike the original C implementation's process-
// wide statics — every FS owns its own arenas, bitmaps, and open-file
// table.
type FS struct {
	cfg   config.Config
	store *state.Store
	log   *log.Logger
}

// New constructs an FS sized by cfg, creating the root directory inode.
// This is the Go-side equivalent of the original API's init().
func New(cfg config.Config, opts ...Option) (*FS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := state.New(state.Sizing{
		BlockSize:      cfg.BlockSize,
		DataBlocks:     cfg.DataBlocks,
		InodeTableSize: cfg.InodeTableSize,
		MaxOpenFiles:   cfg.MaxOpenFiles,
		DirectBlocks:   cfg.DirectBlocks,
		MaxFileNameLen: cfg.MaxFileNameLen,
		IndirectBlocks: cfg.IndirectBlocks(),
		MaxDirEntries:  cfg.MaxDirEntries(),
	})
	if err != nil {
		return nil, err
	}

	fs := &FS{cfg: cfg, store: store, log: log.Default()}
	for _, opt := range opts {
		if err := opt(fs); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Close releases fs. Tables are garbage collected with the FS value
// itself; Close exists to mirror the original API's destroy() and to
// give callers a clear point at which no further operation is valid.
// Unlike a real destroy, it is idempotent and never fails.
func (fs *FS) Close() error {
	return nil
}

// Config returns the sizing this FS was constructed with.
func (fs *FS) Config() config.Config {
	return fs.cfg
}
