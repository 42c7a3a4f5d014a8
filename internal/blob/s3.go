package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the part of *s3.Client the bucket uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 is an AWS S3 (or S3-compatible) bucket, configured from the default
// AWS credential chain.
type S3 struct {
	client s3API
	bucket string
	prefix string
}

var _ Bucket = (*S3)(nil)

// NewS3 opens bucketName, which must already exist.
func NewS3(ctx context.Context, bucketName string, opts ...Option) (*S3, error) {
	r := newRemote(opts)

	var loadOpts []func(*config.LoadOptions) error
	if r.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(r.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if r.endpoint != "" {
			o.BaseEndpoint = aws.String(r.endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: bucketName, prefix: r.prefix}, nil
}

// Open reads the object under key.
func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.prefix+key)
		}
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.prefix+key, err)
	}
	return out.Body, nil
}

// Create buffers the object in memory and uploads it with a single
// PutObject when closed, since the request needs a seekable body.
func (s *S3) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	return &s3Writer{ctx: ctx, bucket: s, key: s.prefix + key}, nil
}

// URL returns "s3://bucket/prefix".
func (s *S3) URL() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// Close is a no-op; the S3 client holds no connections that need release.
func (s *S3) Close() error {
	return nil
}

type s3Writer struct {
	bytes.Buffer
	ctx    context.Context
	bucket *S3
	key    string
}

func (w *s3Writer) Close() error {
	_, err := w.bucket.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.Bytes()),
		ContentLength: aws.Int64(int64(w.Len())),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", w.bucket.bucket, w.key, err)
	}
	return nil
}
