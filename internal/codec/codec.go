// Package codec compresses and decompresses the exporter's input and output
// streams.
package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownCodec indicates a codec name that is not registered.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec wraps streams with a compression format.
type Codec interface {
	// Name identifies the codec on the command line, e.g. "zstd".
	Name() string
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the writer
	// flushes it but never closes w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension is the file extension without dot, or "" for none.
	Extension() string
}

var registry = []Codec{None(), Gzip(), Zstd()}

// Names lists the registered codec names.
func Names() []string {
	names := make([]string, len(registry))
	for i, c := range registry {
		names[i] = c.Name()
	}
	return names
}

// ForName returns the codec called name. The empty string selects None.
func ForName(name string) (Codec, error) {
	if name == "" {
		return None(), nil
	}
	for _, c := range registry {
		if strings.EqualFold(c.Name(), name) || strings.EqualFold(c.Extension(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
}

// ForPath picks a codec from the extension of path and returns the path
// with that extension removed. Paths without a known extension get None.
func ForPath(path string) (Codec, string) {
	for _, c := range registry {
		ext := c.Extension()
		if ext != "" && strings.HasSuffix(strings.ToLower(path), "."+ext) {
			return c, path[:len(path)-len(ext)-1]
		}
	}
	return None(), path
}

// AppendExtension adds c's extension to name when it has one.
func AppendExtension(name string, c Codec) string {
	if c == nil || c.Extension() == "" {
		return name
	}
	return name + "." + c.Extension()
}
