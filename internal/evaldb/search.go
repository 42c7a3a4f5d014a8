package evaldb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/discochess/pgn2data/internal/codec"
)

var errNoRecord = errors.New("evaldb: no record")

// record is one line of the Lichess evaluation export.
type record struct {
	FEN   string `json:"fen"`
	Evals []struct {
		PVs []struct {
			CP   *int   `json:"cp,omitempty"`
			Mate *int   `json:"mate,omitempty"`
			Line string `json:"line"`
		} `json:"pvs"`
		Knodes int `json:"knodes"`
		Depth  int `json:"depth"`
	} `json:"evals"`
}

// best picks the first principal variation of the deepest evaluation.
func (r *record) best() *Eval {
	e := &Eval{FEN: r.FEN}
	deepest := -1
	for i, ev := range r.Evals {
		if len(ev.PVs) == 0 {
			continue
		}
		if deepest < 0 || ev.Depth > r.Evals[deepest].Depth {
			deepest = i
		}
	}
	if deepest < 0 {
		return e
	}
	ev := r.Evals[deepest]
	e.Depth = ev.Depth
	e.Centipawns = ev.PVs[0].CP
	e.Mate = ev.PVs[0].Mate
	return e
}

// search binary-searches shard data sorted by the "fen" field.
func search(data []byte, fen string) (*record, error) {
	lines := splitLines(data)
	i := sort.Search(len(lines), func(i int) bool {
		return fenOf(lines[i]) >= fen
	})
	if i == len(lines) || fenOf(lines[i]) != fen {
		return nil, errNoRecord
	}
	var rec record
	if err := json.Unmarshal(lines[i], &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return &rec, nil
}

func splitLines(data []byte) [][]byte {
	lines := make([][]byte, 0, bytes.Count(data, []byte{'\n'})+1)
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// fenOf extracts the "fen" value without decoding the whole record. FEN
// strings contain no characters JSON would escape.
func fenOf(line []byte) string {
	const key = `"fen":"`
	i := bytes.Index(line, []byte(key))
	if i < 0 {
		return ""
	}
	rest := line[i+len(key):]
	j := bytes.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return string(rest[:j])
}

func decompress(r io.Reader, c codec.Codec) ([]byte, error) {
	dr, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating %s reader: %w", c.Name(), err)
	}
	defer dr.Close()
	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("decompressing shard: %w", err)
	}
	return data, nil
}
