// Package pathutil canonicalizes the slash-delimited relative paths the
// whole engine uses as comparison keys.
package pathutil

import "strings"

// Normalize returns path with exactly one leading slash (or none when
// leadingSlash is false, so Windows drive letters survive), no trailing
// slash, and "/" as the sole separator. An empty path stays empty.
// Normalizing an already-normalized path is a no-op.
func Normalize(path string, leadingSlash bool) string {
	if path == "" {
		return ""
	}

	path = strings.ReplaceAll(path, "\\", "/")

	if leadingSlash && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !leadingSlash {
		path = strings.TrimPrefix(path, "/")
	}

	// A bare "/" normalizes to the empty root, so joining the root with a
	// child's leading slash never doubles a separator.
	for strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Depth counts the path separators in a normalized relative path. It is the
// sole ordering key for dependency-safe plan sequencing: a parent directory
// always has a strictly smaller depth than anything inside it.
func Depth(path string) int {
	return strings.Count(path, "/")
}

// Parent splits a normalized path into its parent directory and base name.
func Parent(path string) (dir, name string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
