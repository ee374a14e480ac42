package store

import "strings"

// Separator splits a path into mapping keys.
const Separator = "."

// SplitPath splits a dotted path into segments. The empty path has no
// segments and addresses the root.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}
