package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct{}

var _ Codec = zstdCodec{}

// Zstd returns the zstd codec.
func Zstd() Codec { return zstdCodec{} }

func (zstdCodec) Name() string      { return "zstd" }
func (zstdCodec) Extension() string { return "zst" }

func (zstdCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func (zstdCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}
