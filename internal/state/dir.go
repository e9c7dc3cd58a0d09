package state

import "bytes"

// A directory entry occupies a fixed-length name buffer (nul-padded,
// truncated to maxNameLen-1 plus terminator) followed by a 4-byte
// inumber, packed one after another into the directory's single data
// block. entrySize mirrors sizeof(dir_entry_t).
func entrySize(maxNameLen int) int {
	return maxNameLen + indexEntrySize
}

func clearDirBlock(block []byte, maxDirEntries, maxNameLen int) {
	sz := entrySize(maxNameLen)
	for i := 0; i < maxDirEntries; i++ {
		off := i * sz
		writeDirInumber(block, off, maxNameLen, Unallocated)
	}
}

func dirName(block []byte, off, maxNameLen int) string {
	raw := block[off : off+maxNameLen]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

func writeDirName(block []byte, off, maxNameLen int, name string) {
	nameBuf := block[off : off+maxNameLen]
	for i := range nameBuf {
		nameBuf[i] = 0
	}
	n := copy(nameBuf, name)
	if n >= maxNameLen {
		nameBuf[maxNameLen-1] = 0
	}
}

func dirInumber(block []byte, off, maxNameLen int) int {
	return readIndexAt(block, off+maxNameLen)
}

func writeDirInumber(block []byte, off, maxNameLen, inumber int) {
	writeIndexAt(block, off+maxNameLen, inumber)
}

// AddDirEntry scans dirIno's single data block for the first empty (-1)
// slot and fills it with (childInumber, name). Fails if dirIno is not a
// directory, the name is empty, or every slot is taken. The caller must
// hold the directory inode's write-lock.
func (t *InodeTable) AddDirEntry(dirIno *Inode, childInumber int, name string, maxDirEntries, maxNameLen int) bool {
	if dirIno.Kind != KindDirectory || name == "" {
		return false
	}
	block := t.blocks.get(dirIno.DirectBlocks[0])
	if block == nil {
		return false
	}
	sz := entrySize(maxNameLen)
	for i := 0; i < maxDirEntries; i++ {
		off := i * sz
		if dirInumber(block, off, maxNameLen) == Unallocated {
			writeDirName(block, off, maxNameLen, name)
			writeDirInumber(block, off, maxNameLen, childInumber)
			return true
		}
	}
	return false
}

// FindInDir linearly scans dirIno's entries for name, returning its
// inumber or -1. The caller must hold at least the directory inode's
// read-lock during the scan.
func (t *InodeTable) FindInDir(dirIno *Inode, name string, maxDirEntries, maxNameLen int) int {
	if dirIno.Kind != KindDirectory {
		return Unallocated
	}
	block := t.blocks.get(dirIno.DirectBlocks[0])
	if block == nil {
		return Unallocated
	}
	sz := entrySize(maxNameLen)
	for i := 0; i < maxDirEntries; i++ {
		off := i * sz
		inum := dirInumber(block, off, maxNameLen)
		if inum != Unallocated && dirName(block, off, maxNameLen) == name {
			return inum
		}
	}
	return Unallocated
}

// Entries returns a snapshot of every live (name, inumber) pair in
// dirIno, taken under the directory's read-lock. Used by collaborators
// (FUSE bridge, export helpers) that need to enumerate the root
// directory without reaching into state internals.
func (t *InodeTable) Entries(dirIno *Inode, maxDirEntries, maxNameLen int) []DirEntry {
	dirIno.RWMu.RLock()
	defer dirIno.RWMu.RUnlock()

	block := t.blocks.get(dirIno.DirectBlocks[0])
	if block == nil {
		return nil
	}
	sz := entrySize(maxNameLen)
	var out []DirEntry
	for i := 0; i < maxDirEntries; i++ {
		off := i * sz
		inum := dirInumber(block, off, maxNameLen)
		if inum != Unallocated {
			out = append(out, DirEntry{Name: dirName(block, off, maxNameLen), Inumber: inum})
		}
	}
	return out
}

// DirEntry is one (name, inumber) pair returned by Entries.
type DirEntry struct {
	Name    string
	Inumber int
}
