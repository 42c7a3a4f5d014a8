package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/discochess/pgn2data/internal/codec"
)

// Writer writes CSV rows to a file through a codec. The header is written
// when the file is created.
type Writer struct {
	path    string
	columns []string

	file *os.File
	enc  io.WriteCloser
	csv  *csv.Writer

	mu     sync.Mutex
	rows   int64
	closed bool
}

var _ RowWriter = (*Writer)(nil)

// Create creates (or truncates) the file at path and writes the header.
func Create(path string, columns []string, c codec.Codec) (*Writer, error) {
	if c == nil {
		c = codec.None()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := c.Writer(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s encoder: %w", c.Name(), err)
	}

	w := &Writer{
		path:    path,
		columns: append([]string(nil), columns...),
		file:    f,
		enc:     enc,
		csv:     csv.NewWriter(enc),
	}
	if err := w.csv.Write(w.columns); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return w, nil
}

// Path returns the file path.
func (w *Writer) Path() string {
	return w.path
}

// Columns returns the header.
func (w *Writer) Columns() []string {
	return w.columns
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// WriteRow appends one data row.
func (w *Writer) WriteRow(values []string) error {
	if err := checkWidth(w.columns, values); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	if err := w.csv.Write(values); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Flush pushes buffered rows to the encoder.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the encoder and the file. It is safe to call
// more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	err := w.csv.Error()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Buffer is an in-memory RowWriter.
type Buffer struct {
	mu      sync.Mutex
	columns []string
	rows    [][]string
}

var _ RowWriter = (*Buffer)(nil)

// NewBuffer returns an empty buffer with the given header.
func NewBuffer(columns []string) *Buffer {
	return &Buffer{columns: append([]string(nil), columns...)}
}

// Columns returns the header.
func (b *Buffer) Columns() []string {
	return b.columns
}

// WriteRow appends a copy of values.
func (b *Buffer) WriteRow(values []string) error {
	if err := checkWidth(b.columns, values); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, append([]string(nil), values...))
	return nil
}

// Rows returns the rows written so far.
func (b *Buffer) Rows() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.rows...)
}

// Get returns the value of column col in row i.
func (b *Buffer) Get(i int, col string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.rows) {
		return "", false
	}
	for j, c := range b.columns {
		if c == col {
			return b.rows[i][j], true
		}
	}
	return "", false
}
