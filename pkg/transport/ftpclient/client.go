// Package ftpclient is the FTP/FTPS implementation of transport.Remote.
package ftpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/richiec/ftpfetch/pkg/transport"
)

// Options carries everything needed to establish the session.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	TLS      bool
	Timeout  time.Duration
}

// Client holds one exclusive FTP session for the lifetime of a run.
type Client struct {
	conn *ftp.ServerConn
}

// Connect dials the server and logs in. With TLS enabled the control
// connection upgrades via explicit AUTH TLS and data connections are
// protected. Connect and login failures are fatal to the run; nothing has
// been mutated yet when they happen.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	slog.Info("connecting", "host", opts.Host, "port", opts.Port)

	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(opts.Timeout),
	}
	if opts.TLS {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName: opts.Host,
		}))
	}

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	slog.Info("connected, logging in", "user", opts.User)

	if err := conn.Login(opts.User, opts.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login as %s: %w", opts.User, err)
	}
	slog.Info("login successful")

	return &Client{conn: conn}, nil
}

// List returns the children of dir with their facts decoded into the
// engine's DirEntry shape. The server's MLSD listing is used when
// available, so sizes and modification times arrive machine-readable.
func (c *Client) List(_ context.Context, dir string) ([]transport.DirEntry, error) {
	ftpEntries, err := c.conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return decodeEntries(ftpEntries), nil
}

// decodeEntries maps the server's listing facts onto the engine's fixed
// DirEntry shape. The "." and ".." entries some servers emit are dropped;
// links and specials come out as KindOther and are skipped by the scanner.
func decodeEntries(ftpEntries []*ftp.Entry) []transport.DirEntry {
	entries := make([]transport.DirEntry, 0, len(ftpEntries))
	for _, e := range ftpEntries {
		if e.Name == "." || e.Name == ".." {
			continue
		}

		kind := transport.KindOther
		switch e.Type {
		case ftp.EntryTypeFile:
			kind = transport.KindFile
		case ftp.EntryTypeFolder:
			kind = transport.KindDir
		}

		entries = append(entries, transport.DirEntry{
			Name:    e.Name,
			Kind:    kind,
			Size:    e.Size,
			ModTime: e.Time,
		})
	}
	return entries
}

// Download retrieves the remote file at path and streams it into w.
func (c *Client) Download(_ context.Context, path string, w io.Writer) error {
	resp, err := c.conn.Retr(path)
	if err != nil {
		return fmt.Errorf("retr %s: %w", path, err)
	}
	defer resp.Close()

	if _, err := io.Copy(w, resp); err != nil {
		return fmt.Errorf("transfer %s: %w", path, err)
	}
	return nil
}

// Close ends the session with QUIT.
func (c *Client) Close() error {
	return c.conn.Quit()
}
