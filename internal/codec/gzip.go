package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

type gzipCodec struct{}

var _ Codec = gzipCodec{}

// Gzip returns the gzip codec.
func Gzip() Codec { return gzipCodec{} }

func (gzipCodec) Name() string      { return "gzip" }
func (gzipCodec) Extension() string { return "gz" }

func (gzipCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (gzipCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}
