// Package transport defines the narrow remote-side surface the sync engine
// consumes. Concrete sessions live in the ftpclient and s3client
// subpackages; the engine itself never sees protocol details.
package transport

import (
	"context"
	"io"
	"time"
)

// Kind classifies a directory child. Anything that is neither a regular
// file nor a directory (symlinks, sockets, devices) is KindOther and is
// ignored by the scanner.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
)

// DirEntry is one child of a listed directory, decoded into a fixed shape
// at the transport boundary so the rest of the engine never touches
// protocol-specific facts.
type DirEntry struct {
	Name    string
	Kind    Kind
	Size    uint64
	ModTime time.Time // meaningful for files only
}

// Remote is a connected session against the remote tree. List and Download
// block; the session is held exclusively by one run and is not safe for
// concurrent use.
type Remote interface {
	// List returns the children of the given absolute remote directory.
	List(ctx context.Context, dir string) ([]DirEntry, error)

	// Download streams the remote file at the given absolute path into w.
	Download(ctx context.Context, path string, w io.Writer) error

	// Close terminates the session.
	Close() error
}
