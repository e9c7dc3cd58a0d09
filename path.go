package tfs

import "strings"

// validPathname reports whether name is an acceptable absolute path:
// non-empty, at least two characters, and starting with '/'. Only a
// single flat component is supported; any further '/' in the name is
// treated as part of the file name, not a subdirectory.
func validPathname(name string) bool {
	return len(name) > 1 && name[0] == '/'
}

// componentName strips the leading '/' from a validated path.
func componentName(name string) string {
	return strings.TrimPrefix(name, "/")
}
