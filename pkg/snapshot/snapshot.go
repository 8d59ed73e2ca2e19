// Package snapshot holds the flat view of one side of the sync: a mapping
// from normalized relative path to the metadata the diff compares.
package snapshot

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/richiec/ftpfetch/pkg/pathutil"
)

// Entry is a single file or directory captured during a scan.
type Entry struct {
	// RelPath is the slash-normalized path relative to the scan root. It is
	// the comparison key between the remote and local snapshots.
	RelPath string

	// AbsPath addresses the object on its own side (remote path for
	// downloads, local path for deletions). Never compared.
	AbsPath string

	IsDir bool

	// Size in bytes; files only.
	Size uint64

	// ModTime is whole seconds since the epoch, truncated identically on
	// both sides. Files only.
	ModTime int64
}

// Snapshot maps relative path to Entry for one side after filtering.
// A later insertion under the same key overwrites the earlier one.
type Snapshot map[string]Entry

// Add records e under its relative path.
func (s Snapshot) Add(e Entry) {
	s[e.RelPath] = e
}

// FilterSet is the compiled whitelist/blacklist applied by both scanners.
// The whitelist, when non-empty, replaces the configured root as the set of
// scan roots; the blacklist excludes individual entries.
type FilterSet struct {
	whitelist []string
	blacklist []string
	blackset  map[string]struct{}
}

// NewFilterSet compiles the rule set. Entries are normalized to the
// leading-slash relative form used as snapshot keys.
func NewFilterSet(whitelist, blacklist []string) *FilterSet {
	f := &FilterSet{
		blackset: make(map[string]struct{}, len(blacklist)),
	}
	for _, w := range whitelist {
		if p := pathutil.Normalize(w, true); p != "" {
			f.whitelist = append(f.whitelist, p)
		}
	}
	for _, b := range blacklist {
		if p := pathutil.Normalize(b, true); p != "" {
			f.blacklist = append(f.blacklist, p)
			f.blackset[p] = struct{}{}
		}
	}
	return f
}

// Whitelist returns the normalized allow-scope roots, empty when the whole
// tree is in scope.
func (f *FilterSet) Whitelist() []string {
	return f.whitelist
}

// IsExcluded reports whether the relative path matches the blacklist.
// Matching is exact: a blacklisted directory stops traversal into it, but a
// blacklist entry does not implicitly cover descendant paths it never
// names. Entries containing glob metacharacters additionally match as
// doublestar patterns.
func (f *FilterSet) IsExcluded(relPath string) bool {
	if _, ok := f.blackset[relPath]; ok {
		return true
	}
	for _, b := range f.blacklist {
		if !hasGlobMeta(b) {
			continue
		}
		if matched, err := doublestar.Match(b, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

func hasGlobMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
