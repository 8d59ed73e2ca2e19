package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/richiec/ftpfetch/pkg/transport"
)

// LocalLister lists local directories in the same DirEntry shape the remote
// transports produce, so a single Scan serves both sides.
type LocalLister struct{}

func NewLocalLister() *LocalLister {
	return &LocalLister{}
}

func (l *LocalLister) List(_ context.Context, dir string) ([]transport.DirEntry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries := make([]transport.DirEntry, 0, len(dirents))
	for _, de := range dirents {
		info, err := de.Info()
		if err != nil {
			// Entry vanished between ReadDir and stat; a fresh run will
			// pick up whatever replaced it.
			continue
		}

		kind := transport.KindOther
		switch {
		case info.Mode().IsRegular():
			kind = transport.KindFile
		case info.IsDir():
			kind = transport.KindDir
		}

		entries = append(entries, transport.DirEntry{
			Name:    de.Name(),
			Kind:    kind,
			Size:    uint64(info.Size()),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}
