package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/discochess/pgn2data/internal/codec"
)

// Scan streams the table at path through c, calling fn for every data row,
// and returns the header. An empty file has a nil header. fn owns row.
func Scan(path string, c codec.Codec, fn func(row []string) error) ([]string, error) {
	if c == nil {
		c = codec.None()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := c.Reader(f)
	if err != nil {
		return nil, fmt.Errorf("opening %s decoder: %w", c.Name(), err)
	}
	defer dec.Close()

	r := csv.NewReader(dec)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			return header, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(row); err != nil {
			return nil, err
		}
	}
}

// Read returns the header and data rows of a table written through c.
func Read(path string, c codec.Codec) (header []string, rows [][]string, err error) {
	header, err = Scan(path, c, func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// Collapse rewrites the table at path without the columns that are empty in
// every data row, and returns the dropped column names. A table with no data
// rows is left as is. The table is streamed twice, once to find the empty
// columns and once to rewrite it, so it is never held in memory.
func Collapse(path string, c codec.Codec) ([]string, error) {
	var (
		rows   int
		filled []bool
	)
	header, err := Scan(path, c, func(row []string) error {
		if filled == nil {
			filled = make([]bool, len(row))
		}
		rows++
		for j, v := range row {
			if v != "" && j < len(filled) {
				filled[j] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}

	keep := make([]int, 0, len(header))
	var dropped []string
	for j, col := range header {
		if j < len(filled) && filled[j] {
			keep = append(keep, j)
		} else {
			dropped = append(dropped, col)
		}
	}
	if len(dropped) == 0 {
		return nil, nil
	}

	project := func(row []string) []string {
		out := make([]string, len(keep))
		for i, j := range keep {
			out[i] = row[j]
		}
		return out
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".collapse")
	w, err := Create(tmp, project(header), c)
	if err != nil {
		return nil, err
	}
	if _, err := Scan(path, c, func(row []string) error {
		return w.WriteRow(project(row))
	}); err != nil {
		w.Close()
		os.Remove(tmp)
		return nil, err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replacing %s: %w", path, err)
	}
	return dropped, nil
}
