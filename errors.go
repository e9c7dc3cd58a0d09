package tfs

import "errors"

// Package-specific error variables that can be used with errors.Is() for
// error handling, mirroring the outcome taxonomy of the original C core.
var (
	// ErrInvalidArgument is returned for a malformed path, a nil buffer,
	// or an out-of-range handle or inumber.
	ErrInvalidArgument = errors.New("tfs: invalid argument")

	// ErrNotFound is returned by lookup on an absent name, or by open
	// without O_CREAT when the name does not resolve.
	ErrNotFound = errors.New("tfs: not found")

	// ErrExhausted is returned when the inode table, the block bitmap,
	// or the open-file table is full.
	ErrExhausted = errors.New("tfs: exhausted")

	// ErrConflict is returned when a directory is full, or add_dir_entry
	// targets a non-directory inode.
	ErrConflict = errors.New("tfs: conflict")

	// ErrInternal is returned for an unexpected bitmap/lock inconsistency
	// that should not be reachable from valid inputs.
	ErrInternal = errors.New("tfs: internal error")
)
