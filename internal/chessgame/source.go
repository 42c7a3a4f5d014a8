package chessgame

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/codec"
)

// ErrNoGame indicates PGN text without a parseable game.
var ErrNoGame = errors.New("chessgame: no game in record")

// maxLine bounds a single PGN line. Lichess movetext for long games fits
// comfortably.
const maxLine = 1024 * 1024

// Source yields games in file order. Next returns io.EOF once exhausted.
type Source interface {
	Next(ctx context.Context) (*Game, error)
	Close() error
}

// Scanner reads consecutive PGN records from a stream. A record starts at a
// tag line that follows movetext; records that fail to parse are logged and
// skipped.
type Scanner struct {
	name    string
	lines   *bufio.Scanner
	closer  io.Closer
	logger  *zap.Logger
	pending string
	skipped int
}

var _ Source = (*Scanner)(nil)

// NewScanner reads PGN from r. name is reported as Game.Source.
func NewScanner(r io.Reader, name string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), maxLine)
	s := &Scanner{
		name:   name,
		lines:  lines,
		logger: logger,
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Open opens a PGN file, decompressing it when its extension names a codec
// (".pgn.zst", ".pgn.gz").
func Open(path string, logger *zap.Logger) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	c, _ := codec.ForPath(path)
	r, err := c.Reader(bufio.NewReaderSize(f, 256*1024))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s as %s: %w", path, c.Name(), err)
	}
	s := NewScanner(r, filepath.Base(path), logger)
	s.closer = multiCloser{r, f}
	return s, nil
}

// Name returns the base name games are attributed to.
func (s *Scanner) Name() string {
	return s.name
}

// Skipped returns how many records failed to parse.
func (s *Scanner) Skipped() int {
	return s.skipped
}

// Next returns the next parseable game.
func (s *Scanner) Next(ctx context.Context) (*Game, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.record()
		if err != nil {
			return nil, err
		}
		g, err := Parse(text)
		if err != nil {
			s.skipped++
			s.logger.Warn("skipping unparseable game",
				zap.String("file", s.name),
				zap.Int("skipped", s.skipped),
				zap.Error(err),
			)
			continue
		}
		g.Source = s.name
		return g, nil
	}
}

// record returns the text of the next record, or io.EOF.
func (s *Scanner) record() (string, error) {
	var b strings.Builder
	inMoves := false
	if s.pending != "" {
		b.WriteString(s.pending)
		b.WriteByte('\n')
		s.pending = ""
	}

	for s.lines.Scan() {
		line := strings.TrimRight(s.lines.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "["):
			if inMoves {
				s.pending = line
				return b.String(), nil
			}
		case trimmed != "" && !strings.HasPrefix(trimmed, "%"):
			inMoves = true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := s.lines.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", s.name, err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", io.EOF
	}
	return b.String(), nil
}

// Close releases the underlying stream when the scanner owns it.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Parse reads exactly one game from PGN text.
func Parse(text string) (*Game, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoGame
	}
	pgn, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing PGN: %w", err)
	}
	return NewGame(chess.NewGame(pgn)), nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
