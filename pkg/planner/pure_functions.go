package planner

import (
	"sort"

	"github.com/richiec/ftpfetch/pkg/pathutil"
	"github.com/richiec/ftpfetch/pkg/snapshot"
)

// Diff compares the two snapshots and classifies every differing path into
// one of the four buckets. Remote wins unconditionally: a file present on
// both sides is scheduled for download whenever its size or whole-second
// modification time differs. Directories are never updated, only created or
// removed. Neither input is mutated; the buckets are freshly built.
func Diff(remote, local snapshot.Snapshot) Buckets {
	b := Buckets{
		FilesToDownload: []Download{},
		DirsToCreate:    []string{},
		FilesToDelete:   []string{},
		DirsToDelete:    []string{},
	}

	matched := make(map[string]struct{}, len(local))

	for _, key := range sortedKeys(remote) {
		r := remote[key]
		l, exists := local[key]
		if !exists {
			if r.IsDir {
				b.DirsToCreate = append(b.DirsToCreate, key)
			} else {
				b.FilesToDownload = append(b.FilesToDownload, Download{
					Path:       key,
					RemotePath: r.AbsPath,
					ModTime:    r.ModTime,
				})
			}
			continue
		}

		matched[key] = struct{}{}

		// Modification time carries no meaning for directories. A kind
		// mismatch on the same key also lands here: there is nothing
		// sensible to transfer for it.
		if r.IsDir || l.IsDir {
			continue
		}

		if r.Size != l.Size || r.ModTime != l.ModTime {
			b.FilesToDownload = append(b.FilesToDownload, Download{
				Path:       key,
				RemotePath: r.AbsPath,
				ModTime:    r.ModTime,
			})
		}
	}

	// Everything local that found no remote counterpart goes away.
	for _, key := range sortedKeys(local) {
		if _, ok := matched[key]; ok {
			continue
		}
		if local[key].IsDir {
			b.DirsToDelete = append(b.DirsToDelete, key)
		} else {
			b.FilesToDelete = append(b.FilesToDelete, key)
		}
	}

	return b
}

// Sequence orders the buckets by structural depth into an applicable plan.
// Creations and downloads run shallow-to-deep so parents exist before their
// children; directory deletions run deep-to-shallow so a directory is empty
// before it is removed. File deletions have no cross-dependency and are
// sorted shallow-to-deep only for readable output. Sorting is stable, so
// equal depths keep their insertion order.
func Sequence(b Buckets) Plan {
	p := Plan{
		FilesToDownload: append([]Download(nil), b.FilesToDownload...),
		DirsToCreate:    append([]string(nil), b.DirsToCreate...),
		FilesToDelete:   append([]string(nil), b.FilesToDelete...),
		DirsToDelete:    append([]string(nil), b.DirsToDelete...),
	}

	sort.SliceStable(p.FilesToDownload, func(i, j int) bool {
		return pathutil.Depth(p.FilesToDownload[i].Path) < pathutil.Depth(p.FilesToDownload[j].Path)
	})
	sortByDepth(p.DirsToCreate, false)
	sortByDepth(p.FilesToDelete, false)
	sortByDepth(p.DirsToDelete, true)

	return p
}

func sortByDepth(paths []string, deepFirst bool) {
	sort.SliceStable(paths, func(i, j int) bool {
		if deepFirst {
			return pathutil.Depth(paths[i]) > pathutil.Depth(paths[j])
		}
		return pathutil.Depth(paths[i]) < pathutil.Depth(paths[j])
	})
}

func sortedKeys(s snapshot.Snapshot) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
