package tfs

import "log"

// Option configures an FS at construction time.
type Option func(fs *FS) error

// WithLogger overrides the *log.Logger used for diagnostic messages
// (allocator exhaustion, orphaned files left by a full open-file table).
// The default writes to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(fs *FS) error {
		fs.log = l
		return nil
	}
}
