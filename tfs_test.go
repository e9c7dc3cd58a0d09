package tfs_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/go-ncalo/tfs"
	"github.com/go-ncalo/tfs/config"
)

// smallConfig sizes a store small enough that indirect-block spill and
// capacity exhaustion happen within a handful of bytes, instead of
// requiring megabytes of writes to exercise.
func smallConfig() config.Config {
	return config.Config{
		BlockSize:      32,
		DataBlocks:     64,
		InodeTableSize: 8,
		MaxOpenFiles:   8,
		DirectBlocks:   2,
		MaxFileNameLen: 8,
	}
}

func newTestFS(t *testing.T) *tfs.FS {
	t.Helper()
	fsys, err := tfs.New(smallConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return fsys
}

func writeAll(t *testing.T, fsys *tfs.FS, handle int, data []byte) int {
	t.Helper()
	n, err := fsys.Write(handle, data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return n
}

func readAll(t *testing.T, fsys *tfs.FS, handle int, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	got, err := fsys.Read(handle, buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return buf[:got]
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	fsys := newTestFS(t)

	h, err := fsys.Open("/greet", tfs.OCreat)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := []byte("hello world")
	if n := writeAll(t, fsys, h, want); n != len(want) {
		t.Fatalf("Write() = %d, want %d", n, len(want))
	}
	if err := fsys.CloseHandle(h); err != nil {
		t.Fatalf("CloseHandle() error = %v", err)
	}

	h2, err := fsys.Open("/greet", 0)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer fsys.CloseHandle(h2)

	got := readAll(t, fsys, h2, len(want))
	if !bytes.Equal(got, want) {
		t.Errorf("Read() = %q, want %q", got, want)
	}

	// Offset is at EOF now; a further read returns 0, nil.
	n, err := fsys.Read(h2, make([]byte, 8))
	if err != nil || n != 0 {
		t.Errorf("Read() at EOF = (%d, %v), want (0, nil)", n, err)
	}
}

func TestTruncateResetsSize(t *testing.T) {
	fsys := newTestFS(t)

	h, _ := fsys.Open("/doc", tfs.OCreat)
	writeAll(t, fsys, h, bytes.Repeat([]byte("x"), 50))
	fsys.CloseHandle(h)

	h2, err := fsys.Open("/doc", tfs.OTrunc)
	if err != nil {
		t.Fatalf("Open(OTrunc) error = %v", err)
	}
	defer fsys.CloseHandle(h2)

	short := []byte("new")
	writeAll(t, fsys, h2, short)

	h3, _ := fsys.Open("/doc", 0)
	defer fsys.CloseHandle(h3)
	got := readAll(t, fsys, h3, 100)
	if !bytes.Equal(got, short) {
		t.Errorf("Read() after truncate = %q, want %q", got, short)
	}
}

func TestAppendPositionsAtEnd(t *testing.T) {
	fsys := newTestFS(t)

	h, _ := fsys.Open("/log", tfs.OCreat)
	writeAll(t, fsys, h, []byte("abc"))
	fsys.CloseHandle(h)

	h2, err := fsys.Open("/log", tfs.OAppend)
	if err != nil {
		t.Fatalf("Open(OAppend) error = %v", err)
	}
	writeAll(t, fsys, h2, []byte("def"))
	fsys.CloseHandle(h2)

	h3, _ := fsys.Open("/log", 0)
	defer fsys.CloseHandle(h3)
	got := readAll(t, fsys, h3, 100)
	if want := []byte("abcdef"); !bytes.Equal(got, want) {
		t.Errorf("Read() after append = %q, want %q", got, want)
	}
}

func TestWriteSpillsIntoIndirectBlock(t *testing.T) {
	fsys := newTestFS(t)
	cfg := fsys.Config()
	directCapacity := cfg.DirectBlocks * cfg.BlockSize

	h, _ := fsys.Open("/big", tfs.OCreat)
	defer fsys.CloseHandle(h)

	payload := bytes.Repeat([]byte("y"), directCapacity+10)
	if n := writeAll(t, fsys, h, payload); n != len(payload) {
		t.Fatalf("Write() = %d, want %d (spilling past direct blocks)", n, len(payload))
	}

	h2, _ := fsys.Open("/big", 0)
	defer fsys.CloseHandle(h2)
	got := readAll(t, fsys, h2, len(payload))
	if !bytes.Equal(got, payload) {
		t.Error("data read back after indirect-block spill does not match what was written")
	}
}

func TestWriteBeyondCapacityIsPartialThenExhausted(t *testing.T) {
	fsys := newTestFS(t)
	capacity := fsys.Config().Capacity()

	h, _ := fsys.Open("/overflow", tfs.OCreat)
	defer fsys.CloseHandle(h)

	payload := bytes.Repeat([]byte("z"), capacity+64)
	n, err := fsys.Write(h, payload)
	if err != nil {
		t.Fatalf("Write() error = %v, want a partial success", err)
	}
	if n != capacity {
		t.Fatalf("Write() = %d, want %d (clamped to capacity)", n, capacity)
	}

	// The file is now exactly full; a further write at the same offset
	// must fail outright rather than silently succeed with 0 bytes.
	_, err = fsys.Write(h, []byte("x"))
	if !errors.Is(err, tfs.ErrExhausted) {
		t.Errorf("Write() past capacity error = %v, want ErrExhausted", err)
	}
}

func TestOpenWithoutCreateOnMissingFileFails(t *testing.T) {
	fsys := newTestFS(t)
	if _, err := fsys.Open("/nope", 0); !errors.Is(err, tfs.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestOpenRejectsMalformedPath(t *testing.T) {
	fsys := newTestFS(t)
	for _, p := range []string{"", "/", "noleadingslash"} {
		if _, err := fsys.Open(p, tfs.OCreat); !errors.Is(err, tfs.ErrInvalidArgument) {
			t.Errorf("Open(%q) error = %v, want ErrInvalidArgument", p, err)
		}
	}
}

func TestCloseHandleValidatesBeforeInodeLookup(t *testing.T) {
	fsys := newTestFS(t)
	if err := fsys.CloseHandle(999); !errors.Is(err, tfs.ErrInvalidArgument) {
		t.Errorf("CloseHandle() on a never-opened handle = %v, want ErrInvalidArgument", err)
	}

	h, _ := fsys.Open("/f", tfs.OCreat)
	if err := fsys.CloseHandle(h); err != nil {
		t.Fatalf("CloseHandle() error = %v", err)
	}
	if err := fsys.CloseHandle(h); !errors.Is(err, tfs.ErrInvalidArgument) {
		t.Errorf("double CloseHandle() = %v, want ErrInvalidArgument", err)
	}
}

func TestLookupAndEntries(t *testing.T) {
	fsys := newTestFS(t)
	h, _ := fsys.Open("/a", tfs.OCreat)
	fsys.CloseHandle(h)

	inum, err := fsys.Lookup("/a")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	entries := fsys.Entries()
	found := false
	for _, e := range entries {
		if e.Name == "a" && e.Inumber == inum {
			found = true
		}
	}
	if !found {
		t.Errorf("Entries() = %+v, want an entry for /a with inumber %d", entries, inum)
	}

	if _, err := fsys.Lookup("/missing"); !errors.Is(err, tfs.ErrNotFound) {
		t.Errorf("Lookup() on a missing name error = %v, want ErrNotFound", err)
	}
}

// TestConcurrentWritersDifferentFiles writes to two distinct files from
// two goroutines and checks neither write corrupts the other's blocks.
func TestConcurrentWritersDifferentFiles(t *testing.T) {
	fsys := newTestFS(t)

	var wg sync.WaitGroup
	payloads := map[string][]byte{
		"/one": bytes.Repeat([]byte("1"), 40),
		"/two": bytes.Repeat([]byte("2"), 40),
	}

	for path, data := range payloads {
		wg.Add(1)
		go func(path string, data []byte) {
			defer wg.Done()
			h, err := fsys.Open(path, tfs.OCreat)
			if err != nil {
				t.Errorf("Open(%q) error = %v", path, err)
				return
			}
			defer fsys.CloseHandle(h)
			if _, err := fsys.Write(h, data); err != nil {
				t.Errorf("Write(%q) error = %v", path, err)
			}
		}(path, data)
	}
	wg.Wait()

	for path, want := range payloads {
		h, err := fsys.Open(path, 0)
		if err != nil {
			t.Fatalf("reopen Open(%q) error = %v", path, err)
		}
		got := readAll(t, fsys, h, len(want))
		fsys.CloseHandle(h)
		if !bytes.Equal(got, want) {
			t.Errorf("Read(%q) = %q, want %q", path, got, want)
		}
	}
}

// TestConcurrentReadersAfterSequentialAppend mirrors the create-then-
// append-then-many-concurrent-readers scenario: one writer creates and
// fills the file, a second writer appends to it after the first
// finishes (O_APPEND's offset is fixed at open time, so two writers
// racing to append to the same file is not a supported pattern), and
// then several reader goroutines open and read the whole file
// concurrently, all observing the identical, uncorrupted result.
func TestConcurrentReadersAfterSequentialAppend(t *testing.T) {
	fsys := newTestFS(t)

	h0, err := fsys.Open("/shared", tfs.OCreat)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first := bytes.Repeat([]byte("a"), 40)
	writeAll(t, fsys, h0, first)
	fsys.CloseHandle(h0)

	h1, err := fsys.Open("/shared", tfs.OAppend)
	if err != nil {
		t.Fatalf("Open(OAppend) error = %v", err)
	}
	second := bytes.Repeat([]byte("a"), 40)
	writeAll(t, fsys, h1, second)
	fsys.CloseHandle(h1)

	want := append(append([]byte{}, first...), second...)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := fsys.Open("/shared", 0)
			if err != nil {
				t.Errorf("reader Open() error = %v", err)
				return
			}
			defer fsys.CloseHandle(h)
			got := readAll(t, fsys, h, len(want))
			if !bytes.Equal(got, want) {
				t.Errorf("reader got %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}
