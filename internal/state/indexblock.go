package state

import "encoding/binary"

// An indirect block's bytes are reinterpreted as an array of signed
// 32-bit block indices. readIndexEntry/writeIndexEntry encode/decode
// one such entry at index j, using encoding/binary for the fixed-width
// field the way the squashfs inode reader this package is adapted from
// does.
const indexEntrySize = 4

func readIndexEntry(block []byte, j int) int {
	return readIndexAt(block, j*indexEntrySize)
}

func writeIndexEntry(block []byte, j int, v int) {
	writeIndexAt(block, j*indexEntrySize, v)
}

// readIndexAt/writeIndexAt address a 32-bit index by raw byte offset
// rather than entry index, used by the directory code whose entry size
// (name length + 4) is not necessarily a multiple of indexEntrySize.
func readIndexAt(block []byte, off int) int {
	u := binary.LittleEndian.Uint32(block[off : off+indexEntrySize])
	return int(int32(u))
}

func writeIndexAt(block []byte, off int, v int) {
	binary.LittleEndian.PutUint32(block[off:off+indexEntrySize], uint32(int32(v)))
}

// clearIndexBlock resets every entry in block to -1 (unallocated).
func clearIndexBlock(block []byte, entries int) {
	for j := 0; j < entries; j++ {
		writeIndexEntry(block, j, -1)
	}
}

// ReadIndirectEntry and WriteIndirectEntry expose the same indirect-block
// index codec to callers outside this package (the root tfs package's
// write/read/truncate paths, which hold the inode lock themselves and
// only need the byte layout, not any state-package locking).
func ReadIndirectEntry(block []byte, j int) int     { return readIndexEntry(block, j) }
func WriteIndirectEntry(block []byte, j int, v int) { writeIndexEntry(block, j, v) }
func ClearIndirectBlock(block []byte, entries int)  { clearIndexBlock(block, entries) }
