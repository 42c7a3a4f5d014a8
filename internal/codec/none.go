package codec

import "io"

type none struct{}

var _ Codec = none{}

// None returns the pass-through codec.
func None() Codec { return none{} }

func (none) Name() string      { return "none" }
func (none) Extension() string { return "" }

func (none) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (none) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
