//go:build fuse

// Package fuseserver exposes a *tfs.FS as a real FUSE mount using
// github.com/hanwen/go-fuse/v2, so the in-memory store can be driven by
// ordinary POSIX tools instead of only by Go callers. It never touches
// tfs's internal locks, only the exported FS methods, and so inherits
// their ordering guarantees for free.
//
// Built only with -tags fuse, mirroring the teacher's optional
// compression backends (comp_xz.go, comp_zstd.go).
package fuseserver

import (
	"context"
	"log"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/go-ncalo/tfs"
)

// Root is the FUSE tree root: a single flat directory of files backed
// by a *tfs.FS, matching the core's one-directory model.
type Root struct {
	fs.Inode
	store *tfs.FS

	mu       sync.Mutex
	children map[string]*fileNode // name -> node, populated lazily
}

var _ fs.InodeEmbedder = (*Root)(nil)
var _ fs.NodeLookuper = (*Root)(nil)
var _ fs.NodeCreater = (*Root)(nil)
var _ fs.NodeReaddirer = (*Root)(nil)

// New wraps store as a FUSE root node.
func New(store *tfs.FS) *Root {
	return &Root{store: store, children: make(map[string]*fileNode)}
}

func (r *Root) nodeFor(name string) *fileNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.children[name]
	if !ok {
		n = &fileNode{root: r, name: name}
		r.children[name] = n
	}
	return n
}

// Lookup resolves name against the root directory via tfs.Lookup.
func (r *Root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	inum, err := r.store.Lookup("/" + name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	n := r.nodeFor(name)
	out.Attr.Mode = modeToUnix(0, 0644)
	out.Attr.Ino = uint64(inum)
	child := r.NewInode(ctx, n, fs.StableAttr{Ino: uint64(inum)})
	return child, 0
}

// Create opens (with O_CREAT) a new file via tfs.Open and returns a
// FileHandle wrapping the resulting tfs handle.
func (r *Root) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	handle, err := r.store.Open("/"+name, tfs.OCreat)
	if err != nil {
		log.Printf("fuseserver: create %q: %v", name, err)
		return nil, nil, 0, syscall.EIO
	}
	n := r.nodeFor(name)
	child := r.NewInode(ctx, n, fs.StableAttr{})
	return child, &openHandle{store: r.store, handle: handle}, 0, 0
}

// Readdir lists the root directory's live entries via tfs.Entries.
func (r *Root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries := r.store.Entries()
	list := make([]fuse.DirEntry, len(entries))
	for i, e := range entries {
		list[i] = fuse.DirEntry{Name: e.Name, Ino: uint64(e.Inumber), Mode: modeToUnix(0, 0644)}
	}
	return fs.NewListDirStream(list), 0
}

// fileNode represents one open-able regular file.
type fileNode struct {
	fs.Inode
	root *Root
	name string
}

var _ fs.NodeOpener = (*fileNode)(nil)

// Open resolves the node's path again and returns a fresh tfs handle.
// Each returned openHandle tracks its own tfs offset independently of
// the kernel-supplied off on Read/Write, which it ignores.
func (n *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	var openFlags tfs.OpenFlag
	if flags&syscall.O_APPEND != 0 {
		openFlags |= tfs.OAppend
	}
	handle, err := n.root.store.Open("/"+n.name, openFlags)
	if err != nil {
		return nil, 0, syscall.ENOENT
	}
	return &openHandle{store: n.root.store, handle: handle}, 0, 0
}

// openHandle bridges one tfs open-file handle to go-fuse's FileHandle.
type openHandle struct {
	store  *tfs.FS
	handle int
}

var _ fs.FileHandle = (*openHandle)(nil)
var _ fs.FileReader = (*openHandle)(nil)
var _ fs.FileWriter = (*openHandle)(nil)
var _ fs.FileReleaser = (*openHandle)(nil)

// Read ignores the kernel-supplied off and instead relies on tfs's own
// per-handle offset, which only ever advances. This is correct for
// sequential access, the common case for FUSE clients, but a seeking
// reader will observe tfs's offset rather than the position it asked
// for.
func (h *openHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := h.store.Read(h.handle, dest)
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (h *openHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	n, err := h.store.Write(h.handle, data)
	if err != nil {
		return 0, syscall.EIO
	}
	return uint32(n), 0
}

func (h *openHandle) Release(ctx context.Context) syscall.Errno {
	if err := h.store.CloseHandle(h.handle); err != nil {
		return syscall.EIO
	}
	return 0
}
