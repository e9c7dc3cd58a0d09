// Package export copies tfs files out to the host filesystem, optionally
// gzip-compressed, and snapshots the whole root directory to a single
// xz-compressed tarball. None of this is a persistence layer — there is
// no corresponding load/restore operation, and DumpDirectory offers no
// cross-file consistency guarantee beyond what tfs.Read already gives
// each individual file.
package export

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"

	"github.com/go-ncalo/tfs"
)

// Errors returned by the helpers in this package: source missing, dest
// not writable. Internal read failures are wrapped and returned as-is.
var (
	ErrSourceMissing   = errors.New("export: source file not found")
	ErrDestNotWritable = errors.New("export: destination is not writable")
)

// CopyToExternal opens srcPath inside fsys, reads it in full, and writes
// the bytes to destPath on the host filesystem.
func CopyToExternal(fsys *tfs.FS, srcPath, destPath string) error {
	return copyToExternal(fsys, srcPath, destPath, false)
}

// CopyToExternalGzip is CopyToExternal with the host file gzip-compressed
// as it is written, useful when copying many files out of a store whose
// aggregate size exceeds convenient uncompressed host disk usage.
func CopyToExternalGzip(fsys *tfs.FS, srcPath, destPath string) error {
	return copyToExternal(fsys, srcPath, destPath, true)
}

func copyToExternal(fsys *tfs.FS, srcPath, destPath string, compress bool) error {
	if err := checkDestWritable(destPath); err != nil {
		return err
	}

	handle, err := fsys.Open(srcPath, 0)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceMissing, srcPath)
	}
	defer fsys.CloseHandle(handle)

	capacity := fsys.Config().Capacity()
	buf := make([]byte, capacity)
	n, err := fsys.Read(handle, buf)
	if err != nil || n < 0 {
		return fmt.Errorf("export: reading %s: %w", srcPath, err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDestNotWritable, destPath)
	}
	defer out.Close()

	var w io.Writer = out
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(out)
		w = gz
	}

	if _, err := w.Write(buf[:n]); err != nil {
		return fmt.Errorf("export: writing %s: %w", destPath, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("export: closing gzip stream for %s: %w", destPath, err)
		}
	}
	return nil
}

// checkDestWritable verifies the destination's parent directory is
// writable before any read from fsys is attempted, so a doomed copy
// fails with a distinct error instead of after the source read.
func checkDestWritable(destPath string) error {
	dir := filepath.Dir(destPath)
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestNotWritable, dir, err)
	}
	return nil
}

// DumpDirectory enumerates every live entry in fsys's root directory,
// reads each file in full, and writes a single archive/tar stream
// compressed with xz to destPath.
func DumpDirectory(fsys *tfs.FS, destPath string) error {
	if err := checkDestWritable(destPath); err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDestNotWritable, destPath)
	}
	defer out.Close()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("export: creating xz stream: %w", err)
	}
	defer xw.Close()

	tw := tar.NewWriter(xw)
	defer tw.Close()

	capacity := fsys.Config().Capacity()
	buf := make([]byte, capacity)

	for _, entry := range fsys.Entries() {
		handle, err := fsys.Open("/"+entry.Name, 0)
		if err != nil {
			return fmt.Errorf("export: opening %s: %w", entry.Name, err)
		}

		n, err := fsys.Read(handle, buf)
		fsys.CloseHandle(handle)
		if err != nil {
			return fmt.Errorf("export: reading %s: %w", entry.Name, err)
		}

		hdr := &tar.Header{
			Name: entry.Name,
			Mode: 0644,
			Size: int64(n),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("export: writing tar header for %s: %w", entry.Name, err)
		}
		if _, err := tw.Write(buf[:n]); err != nil {
			return fmt.Errorf("export: writing tar body for %s: %w", entry.Name, err)
		}
	}
	return nil
}
