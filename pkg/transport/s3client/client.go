// Package s3client is the S3 implementation of transport.Remote. Bucket
// prefixes delimited by "/" map onto the engine's directory model, so the
// scanner walks an S3 tree exactly the way it walks an FTP one.
package s3client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/richiec/ftpfetch/pkg/transport"
)

// Client reads one bucket through the default AWS credential chain.
type Client struct {
	api        *s3.Client
	downloader *manager.Downloader
	bucket     string
}

// New builds a session against the given bucket. The downloader runs with
// a single part in flight because the engine streams into sequential
// writers.
func New(ctx context.Context, bucket string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(cfg)
	downloader := manager.NewDownloader(api, func(d *manager.Downloader) {
		d.Concurrency = 1
	})

	return &Client{
		api:        api,
		downloader: downloader,
		bucket:     bucket,
	}, nil
}

// List maps one level of the bucket to a directory listing: common
// prefixes become directories, objects become files. The placeholder
// object some tools create for the prefix itself is skipped.
func (c *Client) List(ctx context.Context, dir string) ([]transport.DirEntry, error) {
	prefix := strings.TrimPrefix(dir, "/")
	if prefix != "" {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []transport.DirEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}
		entries = append(entries, pageEntries(prefix, page)...)
	}
	return entries, nil
}

// pageEntries converts one result page into directory children: common
// prefixes become directories, objects become files, and the placeholder
// object for the listed prefix itself is dropped.
func pageEntries(prefix string, page *s3.ListObjectsV2Output) []transport.DirEntry {
	entries := make([]transport.DirEntry, 0, len(page.CommonPrefixes)+len(page.Contents))

	for _, cp := range page.CommonPrefixes {
		name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
		if name == "" {
			continue
		}
		entries = append(entries, transport.DirEntry{
			Name: name,
			Kind: transport.KindDir,
		})
	}

	for _, obj := range page.Contents {
		key := aws.ToString(obj.Key)
		if key == prefix {
			continue
		}
		entries = append(entries, transport.DirEntry{
			Name:    path.Base(key),
			Kind:    transport.KindFile,
			Size:    uint64(aws.ToInt64(obj.Size)),
			ModTime: aws.ToTime(obj.LastModified),
		})
	}
	return entries
}

// Download streams the object at the given absolute path into w.
func (c *Client) Download(ctx context.Context, p string, w io.Writer) error {
	key := strings.TrimPrefix(p, "/")

	_, err := c.downloader.Download(ctx, newSequentialWriterAt(w), &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no session state.
func (c *Client) Close() error {
	return nil
}

// sequentialWriterAt adapts an io.Writer to the manager.Downloader's
// WriterAt contract. Valid only with Concurrency 1, where parts arrive in
// order.
type sequentialWriterAt struct {
	w      io.Writer
	offset int64
}

func newSequentialWriterAt(w io.Writer) *sequentialWriterAt {
	return &sequentialWriterAt{w: w}
}

func (s *sequentialWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if off != s.offset {
		return 0, fmt.Errorf("non-sequential write at offset %d, expected %d", off, s.offset)
	}
	n, err := s.w.Write(p)
	s.offset += int64(n)
	return n, err
}
