// Package executor applies a sequenced plan to the local filesystem. Items
// are attempted strictly in plan order; a failing item is reported and
// skipped, never aborting the rest of the run.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/richiec/ftpfetch/pkg/planner"
)

// Downloader is the one remote capability the executor needs.
// transport.Remote satisfies it.
type Downloader interface {
	Download(ctx context.Context, path string, w io.Writer) error
}

// ItemError records a single failed plan item.
type ItemError struct {
	Op   string
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Report summarizes one apply pass.
type Report struct {
	FilesDeleted    int
	DirsDeleted     int
	DirsCreated     int
	FilesDownloaded int
	Errors          []ItemError
}

// Executor applies plans against one local root using one remote session.
type Executor struct {
	remote    Downloader
	localRoot string

	// chtimes stamps the remote mtime on a downloaded file; a seam so
	// tests can make the stamp fail without platform tricks.
	chtimes func(name string, atime, mtime time.Time) error
}

// New returns an executor rooted at localRoot. localRoot must already be in
// the normalized slash form the snapshots were built from.
func New(remote Downloader, localRoot string) *Executor {
	return &Executor{
		remote:    remote,
		localRoot: localRoot,
		chtimes:   os.Chtimes,
	}
}

// Apply executes the plan: delete files, delete directories, create
// directories, download files. The sequencer already ordered each phase so
// parents exist before children are written and directories are empty
// before they are removed.
func (e *Executor) Apply(ctx context.Context, plan *planner.Plan) *Report {
	report := &Report{}

	for _, rel := range plan.FilesToDelete {
		abs := e.localRoot + rel
		if err := os.Remove(abs); err != nil {
			e.fail(report, "delete file", abs, err)
			continue
		}
		slog.Debug("deleted file", "path", abs)
		report.FilesDeleted++
	}

	for _, rel := range plan.DirsToDelete {
		abs := e.localRoot + rel
		// os.Remove refuses a non-empty directory, which is exactly the
		// guard the delete-children-first ordering relies on.
		if err := os.Remove(abs); err != nil {
			e.fail(report, "delete directory", abs, err)
			continue
		}
		slog.Debug("deleted directory", "path", abs)
		report.DirsDeleted++
	}

	// The running counter spans directory creations and downloads, the way
	// operators see the transfer phase as a single stretch of work.
	item := 1
	total := plan.DownloadTotal()

	for _, rel := range plan.DirsToCreate {
		abs := e.localRoot + rel
		slog.Info("creating directory", "dir", rel, "item", item, "total", total)

		if err := os.Mkdir(abs, 0755); err != nil {
			e.fail(report, "create directory", abs, err)
		} else {
			slog.Debug("created directory", "path", abs)
			report.DirsCreated++
		}
		item++
	}

	for _, dl := range plan.FilesToDownload {
		abs := e.localRoot + dl.Path
		slog.Info("downloading", "file", dl.Path, "item", item, "total", total)

		size, err := e.downloadFile(ctx, dl.RemotePath, abs)
		if err != nil {
			e.fail(report, "download", dl.RemotePath, err)
			item++
			continue
		}
		report.FilesDownloaded++

		// Stamping the remote mtime makes the next run see the file as
		// synchronized. If it fails the downloaded bytes are kept; the
		// file just re-downloads next time.
		mtime := time.Unix(dl.ModTime, 0)
		if err := e.chtimes(abs, mtime, mtime); err != nil {
			e.fail(report, "set mtime", abs, err)
		}

		slog.Debug("downloaded", "path", abs, "size", humanize.Bytes(size))
		item++
	}

	return report
}

func (e *Executor) downloadFile(ctx context.Context, remotePath, abs string) (uint64, error) {
	f, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	dlErr := e.remote.Download(ctx, remotePath, f)
	closeErr := f.Close()
	if dlErr != nil {
		// Partial bytes stay on disk; the size/mtime mismatch schedules a
		// fresh download on the next run.
		return 0, fmt.Errorf("transfer: %w", dlErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close: %w", closeErr)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return 0, nil
	}
	return uint64(info.Size()), nil
}

func (e *Executor) fail(report *Report, op, path string, err error) {
	slog.Error("apply item failed", "op", op, "path", path, "error", err)
	report.Errors = append(report.Errors, ItemError{Op: op, Path: path, Err: err})
}
