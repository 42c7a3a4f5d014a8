// Package blob provides object storage for evaluation database shards and
// published export tables. Buckets address objects by slash-separated keys
// relative to a root: a local directory, a GCS bucket prefix, or an S3
// bucket prefix.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Bucket reads and writes objects.
type Bucket interface {
	// Open returns a reader for the object stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Create returns a writer for key. The object is complete once the
	// writer is closed without error.
	Create(ctx context.Context, key string) (io.WriteCloser, error)

	// URL identifies the bucket root, e.g. "gs://bucket/prefix".
	URL() string

	// Close releases any client held by the bucket.
	Close() error
}

// Location is a parsed bucket URL.
type Location struct {
	// Scheme is "gs", "s3", or "" for a local directory.
	Scheme string
	// Bucket is the bucket name, or the directory for local locations.
	Bucket string
	// Prefix is the key prefix with a trailing slash, or "".
	Prefix string
}

// ParseLocation splits "gs://bucket/a/b", "s3://bucket/a/b" or a local path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, errors.New("blob: empty location")
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Location{Bucket: raw}, nil
	}
	switch scheme {
	case "gs", "s3":
	default:
		return Location{}, fmt.Errorf("blob: unsupported scheme %q", scheme)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("blob: missing bucket in %q", raw)
	}
	return Location{Scheme: scheme, Bucket: bucket, Prefix: normalizePrefix(prefix)}, nil
}

func (l Location) String() string {
	if l.Scheme == "" {
		return l.Bucket
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Prefix
}

// OpenBucket opens the bucket at a location URL.
func OpenBucket(ctx context.Context, raw string) (Bucket, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case "gs":
		return NewGCS(ctx, loc.Bucket, WithPrefix(loc.Prefix))
	case "s3":
		return NewS3(ctx, loc.Bucket, WithPrefix(loc.Prefix))
	default:
		return NewDisk(loc.Bucket)
	}
}

// ReadAll reads a whole object.
func ReadAll(ctx context.Context, b Bucket, key string) ([]byte, error) {
	r, err := b.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Upload copies r into a new object under key.
func Upload(ctx context.Context, b Bucket, key string, r io.Reader) (int64, error) {
	w, err := b.Create(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", key, err)
	}
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return n, fmt.Errorf("writing %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("finishing %s: %w", key, err)
	}
	return n, nil
}

// Option configures a remote bucket.
type Option func(*remote)

// remote holds settings shared by the cloud buckets.
type remote struct {
	prefix   string
	region   string
	endpoint string
}

// WithPrefix sets the key prefix under which all objects live.
func WithPrefix(prefix string) Option {
	return func(r *remote) {
		r.prefix = normalizePrefix(prefix)
	}
}

// WithRegion sets the AWS region. Ignored by GCS.
func WithRegion(region string) Option {
	return func(r *remote) {
		r.region = region
	}
}

// WithEndpoint points the S3 client at an S3-compatible service such as
// MinIO, using path-style addressing. Ignored by GCS.
func WithEndpoint(endpoint string) Option {
	return func(r *remote) {
		r.endpoint = endpoint
	}
}

func newRemote(opts []Option) remote {
	var r remote
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
