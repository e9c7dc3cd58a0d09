package state

import "errors"

// ErrRootCreationFailed indicates the root directory's data block could
// not be allocated on a freshly constructed store (DataBlocks < 1).
var ErrRootCreationFailed = errors.New("state: failed to create root directory inode")
