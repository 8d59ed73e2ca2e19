package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiec/ftpfetch/pkg/planner"
)

// fakeRemote is a func-field stub for the Downloader capability.
type fakeRemote struct {
	downloadFunc func(ctx context.Context, path string, w io.Writer) error
}

func (f *fakeRemote) Download(ctx context.Context, path string, w io.Writer) error {
	if f.downloadFunc != nil {
		return f.downloadFunc(ctx, path, w)
	}
	return errors.New("Download not implemented")
}

func TestApplyFullPlan(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())

	require.NoError(t, os.MkdirAll(filepath.Join(root, "old"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old", "x.txt"), []byte("stale"), 0644))

	remote := &fakeRemote{
		downloadFunc: func(_ context.Context, path string, w io.Writer) error {
			_, err := w.Write([]byte("payload for " + path))
			return err
		},
	}

	plan := &planner.Plan{
		FilesToDelete: []string{"/old/x.txt"},
		DirsToDelete:  []string{"/old"},
		DirsToCreate:  []string{"/docs", "/docs/deep"},
		FilesToDownload: []planner.Download{
			{Path: "/docs/deep/readme.txt", RemotePath: "/srv/docs/deep/readme.txt", ModTime: 1700000000},
		},
	}

	report := New(remote, root).Apply(context.Background(), plan)

	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.FilesDeleted)
	assert.Equal(t, 1, report.DirsDeleted)
	assert.Equal(t, 2, report.DirsCreated)
	assert.Equal(t, 1, report.FilesDownloaded)

	_, err := os.Stat(filepath.Join(root, "old"))
	assert.True(t, os.IsNotExist(err), "deleted directory should be gone")

	data, err := os.ReadFile(filepath.Join(root, "docs", "deep", "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload for /srv/docs/deep/readme.txt", string(data))

	info, err := os.Stat(filepath.Join(root, "docs", "deep", "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), info.ModTime().Unix(), "remote mtime should be stamped on the local copy")
}

func TestApplyIsolatesItemFailures(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())

	remote := &fakeRemote{
		downloadFunc: func(_ context.Context, path string, w io.Writer) error {
			if path == "/srv/bad.txt" {
				// Partial write before the transfer dies.
				_, _ = w.Write([]byte("par"))
				return errors.New("connection reset")
			}
			_, err := w.Write([]byte("ok"))
			return err
		},
	}

	plan := &planner.Plan{
		// Deleting a file that does not exist fails, but must not stop
		// anything that follows.
		FilesToDelete: []string{"/missing.txt"},
		FilesToDownload: []planner.Download{
			{Path: "/bad.txt", RemotePath: "/srv/bad.txt", ModTime: 100},
			{Path: "/good.txt", RemotePath: "/srv/good.txt", ModTime: 200},
		},
	}

	report := New(remote, root).Apply(context.Background(), plan)

	require.Len(t, report.Errors, 2)
	assert.Equal(t, "delete file", report.Errors[0].Op)
	assert.Equal(t, "download", report.Errors[1].Op)

	assert.Equal(t, 1, report.FilesDownloaded)

	data, err := os.ReadFile(filepath.Join(root, "good.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	// The failed transfer leaves its partial bytes for the next run to
	// replace; it is not rolled back.
	data, err = os.ReadFile(filepath.Join(root, "bad.txt"))
	require.NoError(t, err)
	assert.Equal(t, "par", string(data))
}

func TestApplyKeepsBytesWhenMtimeStampFails(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())

	remote := &fakeRemote{
		downloadFunc: func(_ context.Context, _ string, w io.Writer) error {
			_, err := w.Write([]byte("fresh"))
			return err
		},
	}

	exec := New(remote, root)
	exec.chtimes = func(string, time.Time, time.Time) error {
		return errors.New("utimes not supported")
	}

	plan := &planner.Plan{
		FilesToDownload: []planner.Download{
			{Path: "/a.txt", RemotePath: "/srv/a.txt", ModTime: 1000},
		},
	}
	report := exec.Apply(context.Background(), plan)

	// The stamp failure is reported, but the transfer itself counts as a
	// success and the downloaded bytes stay on disk.
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "set mtime", report.Errors[0].Op)
	assert.Equal(t, 1, report.FilesDownloaded)

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestApplyProgressCounterSpansDirsAndDownloads(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer slog.SetDefault(prev)

	remote := &fakeRemote{
		downloadFunc: func(_ context.Context, _ string, w io.Writer) error {
			_, err := w.Write([]byte("x"))
			return err
		},
	}

	plan := &planner.Plan{
		DirsToCreate: []string{"/a", "/b"},
		FilesToDownload: []planner.Download{
			{Path: "/a/f.txt", RemotePath: "/srv/a/f.txt", ModTime: 1},
		},
	}
	report := New(remote, root).Apply(context.Background(), plan)
	require.Empty(t, report.Errors)

	// One running counter across directory creations and downloads, so a
	// dir-heavy plan still shows movement before the first transfer.
	out := logs.String()
	assert.Contains(t, out, "creating directory")
	assert.Contains(t, out, "item=1")
	assert.Contains(t, out, "item=2")
	assert.Contains(t, out, "item=3")
	assert.Equal(t, 3, strings.Count(out, "total=3"))
}

func TestApplyRefusesNonEmptyDirDeletion(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())

	require.NoError(t, os.MkdirAll(filepath.Join(root, "keep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep", "f.txt"), []byte("x"), 0644))

	plan := &planner.Plan{DirsToDelete: []string{"/keep"}}
	report := New(&fakeRemote{}, root).Apply(context.Background(), plan)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "delete directory", report.Errors[0].Op)
	assert.Equal(t, 0, report.DirsDeleted)

	_, err := os.Stat(filepath.Join(root, "keep", "f.txt"))
	assert.NoError(t, err, "contents of a non-empty directory must survive")
}
