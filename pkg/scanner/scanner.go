// Package scanner walks one side of the sync and produces its snapshot.
// The traversal is identical for both sides; only the Lister differs.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/richiec/ftpfetch/pkg/pathutil"
	"github.com/richiec/ftpfetch/pkg/snapshot"
	"github.com/richiec/ftpfetch/pkg/transport"
)

// Lister lists the children of an absolute directory. transport.Remote
// satisfies it for the remote side; LocalLister covers the local side.
type Lister interface {
	List(ctx context.Context, dir string) ([]transport.DirEntry, error)
}

// Scan walks the tree under root breadth-first and returns the filtered
// snapshot. When the filter carries a whitelist, only the whitelisted roots
// are scanned; a whitelist root missing on this side is logged and skipped,
// never fatal. The scan root itself is not recorded, every directory found
// below it is.
func Scan(ctx context.Context, root string, filter *snapshot.FilterSet, lister Lister) (snapshot.Snapshot, error) {
	snap := make(snapshot.Snapshot)

	queue := []string{root}
	if wl := filter.Whitelist(); len(wl) > 0 {
		queue = queue[:0]
		for _, rel := range wl {
			abs := root + rel
			entry, ok := probeRoot(ctx, lister, abs)
			if !ok {
				slog.Warn("whitelist path does not exist on this side, skipping", "path", abs)
				continue
			}
			if filter.IsExcluded(rel) {
				continue
			}
			snap.Add(snapshot.Entry{
				RelPath: rel,
				AbsPath: abs,
				IsDir:   entry.Kind == transport.KindDir,
				Size:    entry.Size,
				ModTime: entry.ModTime.Unix(),
			})
			if entry.Kind == transport.KindDir {
				queue = append(queue, abs)
			}
		}
	}

	for i := 0; i < len(queue); i++ {
		dir := queue[i]
		slog.Debug("scanning directory", "path", dir)

		children, err := lister.List(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		for _, child := range children {
			if child.Kind == transport.KindOther {
				continue
			}

			abs := dir + "/" + child.Name
			rel := strings.TrimPrefix(abs, root)
			if filter.IsExcluded(rel) {
				continue
			}

			slog.Debug("found", "path", rel)
			snap.Add(snapshot.Entry{
				RelPath: rel,
				AbsPath: abs,
				IsDir:   child.Kind == transport.KindDir,
				Size:    child.Size,
				ModTime: child.ModTime.Unix(),
			})
			if child.Kind == transport.KindDir {
				queue = append(queue, abs)
			}
		}
	}

	return snap, nil
}

// probeRoot checks that a whitelist root exists by listing its parent and
// finding the named child. Listing the parent rather than the path itself
// keeps the probe uniform across transports that have no stat call.
func probeRoot(ctx context.Context, lister Lister, abs string) (transport.DirEntry, bool) {
	parent, name := pathutil.Parent(abs)
	if name == "" {
		return transport.DirEntry{}, false
	}

	children, err := lister.List(ctx, parent)
	if err != nil {
		return transport.DirEntry{}, false
	}
	for _, child := range children {
		if child.Name == name && child.Kind != transport.KindOther {
			return child, true
		}
	}
	return transport.DirEntry{}, false
}
