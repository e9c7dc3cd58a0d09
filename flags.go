package tfs

import "strings"

// OpenFlag is the bitwise-combinable flag mask accepted by (*FS).Open.
type OpenFlag uint8

const (
	// OCreat creates the file if it does not already exist.
	OCreat OpenFlag = 1 << iota
	// OTrunc truncates an existing file to zero length before use.
	OTrunc
	// OAppend positions the initial offset at the file's current size.
	OAppend
)

func (f OpenFlag) String() string {
	var opt []string

	if f&OCreat != 0 {
		opt = append(opt, "O_CREAT")
	}
	if f&OTrunc != 0 {
		opt = append(opt, "O_TRUNC")
	}
	if f&OAppend != 0 {
		opt = append(opt, "O_APPEND")
	}

	if len(opt) == 0 {
		return "0"
	}
	return strings.Join(opt, "|")
}

// Has reports whether all bits of what are set in f.
func (f OpenFlag) Has(what OpenFlag) bool {
	return f&what == what
}
