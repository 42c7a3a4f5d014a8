// Package evaluator scores chess positions for the moves table. Scores come
// from a UCI engine, a precomputed evaluation database, or either behind an
// LRU cache.
package evaluator

import (
	"context"
	"errors"

	"github.com/discochess/pgn2data/internal/features"
)

// DefaultDepth is the search depth used when none is configured.
const DefaultDepth = 20

// MateScore is the centipawn magnitude assigned to mate in zero moves. Mate
// in n scores MateScore - n.
const MateScore = 10000

var (
	// ErrInvalidDepth indicates a non-positive search depth.
	ErrInvalidDepth = errors.New("evaluator: depth must be positive")

	// ErrNoScore indicates the evaluator produced no score for a position.
	ErrNoScore = errors.New("evaluator: no score")

	// ErrClosed indicates the evaluator has been closed.
	ErrClosed = errors.New("evaluator: closed")
)

// Evaluator scores positions. Implementations are used from a single
// goroutine at a time.
type Evaluator interface {
	// Evaluate scores the position fen at the given depth.
	Evaluate(ctx context.Context, fen string, depth int) (Score, error)

	// Close releases the evaluator's resources.
	Close() error
}

// Factory opens an Evaluator. The exporter opens one per input file and
// closes it once that file is drained.
type Factory func(ctx context.Context) (Evaluator, error)

// Score is an evaluation from White's point of view. Exactly one of
// Centipawns and Mate is set.
type Score struct {
	Centipawns *int
	// Mate is moves to mate, positive when White mates.
	Mate *int
	// Depth is the depth the score was computed at.
	Depth int
}

// Cp returns a centipawn score.
func Cp(cp, depth int) Score {
	return Score{Centipawns: &cp, Depth: depth}
}

// MateIn returns a mate score; n > 0 when White mates.
func MateIn(n, depth int) Score {
	return Score{Mate: &n, Depth: depth}
}

// White returns the score in centipawns from White's point of view, with
// mates mapped to ±(MateScore - |n|).
func (s Score) White() (int, error) {
	switch {
	case s.Centipawns != nil:
		return *s.Centipawns, nil
	case s.Mate != nil:
		n := *s.Mate
		if n < 0 {
			return -(MateScore + n), nil
		}
		return MateScore - n, nil
	}
	return 0, ErrNoScore
}

// For returns the score in centipawns from c's point of view.
func (s Score) For(c features.Color) (int, error) {
	cp, err := s.White()
	if err != nil {
		return 0, err
	}
	if c == features.Black {
		return -cp, nil
	}
	return cp, nil
}

// Pawns converts centipawns to pawn units.
func Pawns(cp int) float64 {
	return float64(cp) / 100
}

// validDepth rejects non-positive depths.
func validDepth(depth int) error {
	if depth <= 0 {
		return ErrInvalidDepth
	}
	return nil
}
