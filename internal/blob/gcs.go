package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS is a bucket in Google Cloud Storage, authenticated with application
// default credentials.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

var _ Bucket = (*GCS)(nil)

// NewGCS opens bucketName, which must already exist.
func NewGCS(ctx context.Context, bucketName string, opts ...Option) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	r := newRemote(opts)
	return &GCS{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		prefix: r.prefix,
	}, nil
}

// Open reads the object under key.
func (g *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := g.bucket.Object(g.prefix + key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, g.prefix+key)
		}
		return nil, fmt.Errorf("reading gs://%s/%s: %w", g.name, g.prefix+key, err)
	}
	return r, nil
}

// Create streams a new object. The upload is committed when the writer is
// closed; cancelling ctx aborts it.
func (g *GCS) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	return g.bucket.Object(g.prefix + key).NewWriter(ctx), nil
}

// URL returns "gs://bucket/prefix".
func (g *GCS) URL() string {
	return "gs://" + g.name + "/" + g.prefix
}

// Close closes the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}
