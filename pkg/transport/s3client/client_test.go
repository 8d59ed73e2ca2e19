package s3client

import (
	"bytes"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiec/ftpfetch/pkg/transport"
)

func TestPageEntries(t *testing.T) {
	stamp := time.Unix(1700000000, 0).UTC()

	page := &s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{
			{Prefix: aws.String("data/docs/")},
			{Prefix: aws.String("data/images/")},
		},
		Contents: []types.Object{
			// Placeholder object for the listed prefix itself.
			{Key: aws.String("data/"), Size: aws.Int64(0)},
			{Key: aws.String("data/readme.txt"), Size: aws.Int64(42), LastModified: aws.Time(stamp)},
		},
	}

	got := pageEntries("data/", page)

	want := []transport.DirEntry{
		{Name: "docs", Kind: transport.KindDir},
		{Name: "images", Kind: transport.KindDir},
		{Name: "readme.txt", Kind: transport.KindFile, Size: 42, ModTime: stamp},
	}
	assert.Equal(t, want, got)
}

func TestPageEntriesBucketRoot(t *testing.T) {
	page := &s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{
			{Prefix: aws.String("top/")},
		},
		Contents: []types.Object{
			{Key: aws.String("root.txt"), Size: aws.Int64(7)},
		},
	}

	got := pageEntries("", page)

	require.Len(t, got, 2)
	assert.Equal(t, transport.DirEntry{Name: "top", Kind: transport.KindDir}, got[0])
	assert.Equal(t, "root.txt", got[1].Name)
	assert.Equal(t, transport.KindFile, got[1].Kind)
	assert.Equal(t, uint64(7), got[1].Size)
}

func TestSequentialWriterAt(t *testing.T) {
	var buf bytes.Buffer
	w := newSequentialWriterAt(&buf)

	n, err := w.WriteAt([]byte("hello "), 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = w.WriteAt([]byte("world"), 6)
	require.NoError(t, err)

	assert.Equal(t, "hello world", buf.String())
}

func TestSequentialWriterAtRejectsGaps(t *testing.T) {
	w := newSequentialWriterAt(&bytes.Buffer{})

	_, err := w.WriteAt([]byte("x"), 42)
	assert.Error(t, err, "out-of-order part must be refused, not silently misplaced")
}
