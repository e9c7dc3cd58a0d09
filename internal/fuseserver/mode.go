package fuseserver

import "io/fs"

// unix mode bits, used to translate between Go's fs.FileMode and the
// numeric mode FUSE's fuse.Attr expects.
// based on: https://golang.org/src/os/stat_linux.go
const (
	sIFMT  = 0xf000
	sIFREG = 0x8000
	sIFDIR = 0x4000
)

// modeToUnix returns the numeric mode bits for a plain file or directory.
// tfs carries no permission, setuid/setgid/sticky, or device-type bits, so
// only the type nibble and the caller-supplied permission bits are set.
func modeToUnix(mode fs.FileMode, perm uint32) uint32 {
	res := perm & 0777
	if mode&fs.ModeDir == fs.ModeDir {
		res |= sIFDIR
	} else {
		res |= sIFREG
	}
	return res
}
