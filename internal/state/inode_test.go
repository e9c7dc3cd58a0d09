package state

import "testing"

const (
	testBlockSize      = 64
	testDirectBlocks   = 4
	testIndirectBlocks = testBlockSize / indexEntrySize
	testMaxNameLen     = 16
)

func testConfig() tableConfig {
	return tableConfig{
		DirectBlocks:   testDirectBlocks,
		IndirectBlocks: testIndirectBlocks,
		BlockSize:      testBlockSize,
	}
}

func newTestTable(inodes, dataBlocks int) (*InodeTable, *blockStore, *bitmap) {
	blocks := newBlockStore(testBlockSize, dataBlocks)
	blockFree := newBitmap(dataBlocks)
	table := newInodeTable(inodes, testConfig(), blocks)
	return table, blocks, blockFree
}

func testMaxDirEntries() int {
	return testBlockSize / entrySize(testMaxNameLen)
}

func TestCreateFileInitializesEmptyInode(t *testing.T) {
	table, _, blockFree := newTestTable(4, 4)

	inum := table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen)
	if inum == -1 {
		t.Fatal("Create() = -1")
	}

	ino := table.Get(inum)
	if ino.Kind != KindFile {
		t.Errorf("Kind = %v, want KindFile", ino.Kind)
	}
	if ino.Size != 0 {
		t.Errorf("Size = %d, want 0", ino.Size)
	}
	if ino.Indirect != Unallocated {
		t.Errorf("Indirect = %d, want Unallocated", ino.Indirect)
	}
	for i, b := range ino.DirectBlocks {
		if b != Unallocated {
			t.Errorf("DirectBlocks[%d] = %d, want Unallocated", i, b)
		}
	}
}

func TestCreateDirectoryAllocatesDataBlock(t *testing.T) {
	table, _, blockFree := newTestTable(4, 4)

	inum := table.Create(KindDirectory, blockFree, testMaxDirEntries(), testMaxNameLen)
	if inum == -1 {
		t.Fatal("Create() = -1")
	}

	ino := table.Get(inum)
	if ino.Kind != KindDirectory {
		t.Errorf("Kind = %v, want KindDirectory", ino.Kind)
	}
	if ino.Size != testBlockSize {
		t.Errorf("Size = %d, want %d", ino.Size, testBlockSize)
	}
	if ino.DirectBlocks[0] == Unallocated {
		t.Error("DirectBlocks[0] left Unallocated for a directory")
	}
	if !blockFree.isTaken(ino.DirectBlocks[0]) {
		t.Error("directory's data block not marked taken in the block bitmap")
	}
}

func TestCreateExhaustsInodeTable(t *testing.T) {
	table, _, blockFree := newTestTable(2, 4)

	if table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen) == -1 {
		t.Fatal("first Create() failed unexpectedly")
	}
	if table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen) == -1 {
		t.Fatal("second Create() failed unexpectedly")
	}
	if got := table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen); got != -1 {
		t.Fatalf("Create() on exhausted table = %d, want -1", got)
	}
}

func TestCreateDirectoryRollsBackOnBlockExhaustion(t *testing.T) {
	table, _, blockFree := newTestTable(4, 0)

	got := table.Create(KindDirectory, blockFree, testMaxDirEntries(), testMaxNameLen)
	if got != -1 {
		t.Fatalf("Create() = %d, want -1 when the block store is exhausted", got)
	}
	if table.free.isTaken(0) {
		t.Error("inumber 0 still marked taken after the failed Create()")
	}
}

func TestDeleteFreesBlocksAndInumber(t *testing.T) {
	table, blocks, blockFree := newTestTable(4, 8)

	inum := table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen)
	ino := table.Get(inum)

	ino.RWMu.Lock()
	ino.DirectBlocks[0] = blockFree.alloc()
	ino.DirectBlocks[1] = blockFree.alloc()
	ino.Indirect = blockFree.alloc()
	indirect := blocks.get(ino.Indirect)
	clearIndexBlock(indirect, testIndirectBlocks)
	spill := blockFree.alloc()
	writeIndexEntry(indirect, 0, spill)
	ino.Size = testBlockSize * 3
	ino.RWMu.Unlock()

	if !table.Delete(inum, blockFree.free) {
		t.Fatal("Delete() = false")
	}

	if blockFree.isTaken(ino.DirectBlocks[0]) || blockFree.isTaken(ino.DirectBlocks[1]) {
		t.Error("direct blocks still marked taken after Delete()")
	}
	if blockFree.isTaken(spill) {
		t.Error("indirectly-referenced block still marked taken after Delete()")
	}
	if table.free.isTaken(inum) {
		t.Error("inumber still marked taken after Delete()")
	}
	if ino.Size != 0 {
		t.Errorf("Size after Delete() = %d, want 0", ino.Size)
	}
}

func TestDeleteInvalidInumber(t *testing.T) {
	table, _, _ := newTestTable(2, 2)
	if table.Delete(-1, func(int) bool { return true }) {
		t.Error("Delete(-1) = true, want false")
	}
	if table.Delete(2, func(int) bool { return true }) {
		t.Error("Delete(2) = true, want false")
	}
}

func TestDeleteTwiceOnSameInumberFails(t *testing.T) {
	table, _, blockFree := newTestTable(4, 4)

	inum := table.Create(KindFile, blockFree, testMaxDirEntries(), testMaxNameLen)
	if !table.Delete(inum, blockFree.free) {
		t.Fatal("first Delete() = false")
	}
	if table.Delete(inum, blockFree.free) {
		t.Error("second Delete() on the same inumber = true, want false")
	}
}

func TestGetOutOfRange(t *testing.T) {
	table, _, _ := newTestTable(2, 2)
	if table.Get(-1) != nil {
		t.Error("Get(-1) != nil")
	}
	if table.Get(2) != nil {
		t.Error("Get(2) != nil")
	}
}
