// Package publish uploads finished export tables to object storage.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/pgn2data/internal/blob"
)

// maxParallel bounds concurrent uploads.
const maxParallel = 4

// Object describes one uploaded file.
type Object struct {
	Path string
	Key  string
	URL  string
	Size int64
}

// Publisher copies local files into a bucket under their base names.
type Publisher struct {
	bucket blob.Bucket
	logger *zap.Logger
}

// New publishes into bucket.
func New(bucket blob.Bucket, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{bucket: bucket, logger: logger}
}

// Open publishes to a location such as "gs://bucket/exports" or
// "s3://bucket/exports". A plain path publishes to a local directory.
func Open(ctx context.Context, location string, logger *zap.Logger) (*Publisher, error) {
	bucket, err := blob.OpenBucket(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("opening publish target %s: %w", location, err)
	}
	return New(bucket, logger), nil
}

// Publish uploads every path and returns the objects in the order given.
// The first failure cancels the remaining uploads.
func (p *Publisher) Publish(ctx context.Context, paths ...string) ([]Object, error) {
	objects := make([]Object, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, path := range paths {
		g.Go(func() error {
			obj, err := p.upload(gctx, path)
			if err != nil {
				return err
			}
			objects[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objects, nil
}

func (p *Publisher) upload(ctx context.Context, path string) (Object, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return Object{}, err
	}
	defer f.Close()

	key := filepath.Base(path)
	n, err := blob.Upload(ctx, p.bucket, key, f)
	if err != nil {
		return Object{}, err
	}
	obj := Object{
		Path: path,
		Key:  key,
		URL:  objectURL(p.bucket.URL(), key),
		Size: n,
	}
	p.logger.Info("published",
		zap.String("path", path),
		zap.String("url", obj.URL),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return obj, nil
}

func objectURL(root, key string) string {
	if strings.HasSuffix(root, "/") {
		return root + key
	}
	return root + "/" + key
}

// Close closes the bucket.
func (p *Publisher) Close() error {
	return p.bucket.Close()
}
