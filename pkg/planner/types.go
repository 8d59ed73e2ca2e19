package planner

// Download is one file to fetch: the snapshot key, the remote handle it is
// fetched from, and the modification time to stamp on the local copy after
// the transfer so the next run sees it as synchronized.
type Download struct {
	Path       string
	RemotePath string
	ModTime    int64
}

// Buckets is the unordered classification of every path the diff found to
// differ between the two snapshots.
type Buckets struct {
	FilesToDownload []Download
	DirsToCreate    []string
	FilesToDelete   []string
	DirsToDelete    []string
}

// Plan is the four buckets after dependency-safe ordering: downloads and
// directory creations shallow-to-deep, directory deletions deep-to-shallow.
// It is written to the summary artifact once and consumed exactly once by
// the executor.
type Plan struct {
	FilesToDownload []Download
	DirsToCreate    []string
	FilesToDelete   []string
	DirsToDelete    []string
}

// Empty reports whether the plan contains no work at all.
func (p *Plan) Empty() bool {
	return len(p.FilesToDownload) == 0 &&
		len(p.DirsToCreate) == 0 &&
		len(p.FilesToDelete) == 0 &&
		len(p.DirsToDelete) == 0
}

// DownloadTotal counts directory creations plus file downloads; it drives
// the user-facing progress counter.
func (p *Plan) DownloadTotal() int {
	return len(p.FilesToDownload) + len(p.DirsToCreate)
}

// DeletionTotal counts file plus directory deletions.
func (p *Plan) DeletionTotal() int {
	return len(p.FilesToDelete) + len(p.DirsToDelete)
}
