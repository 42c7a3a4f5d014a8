package pgn2data

import "github.com/discochess/pgn2data/internal/evaluator"

// Evaluator scores positions for the moves table. Evaluate receives a full
// FEN and returns the score from White's point of view. An Evaluator is
// used from a single goroutine at a time.
type Evaluator = evaluator.Evaluator

// EvaluatorFactory opens an Evaluator. The exporter opens one per input
// file and closes it once that file is drained.
type EvaluatorFactory = evaluator.Factory

// Score is an evaluation from White's point of view.
type Score = evaluator.Score

// MateScore is the centipawn magnitude of a delivered mate. Mate in n is
// exported as MateScore - n.
const MateScore = evaluator.MateScore

// Centipawns returns a centipawn score computed at depth.
func Centipawns(cp, depth int) Score {
	return evaluator.Cp(cp, depth)
}

// MateIn returns a score for mate in n moves, n > 0 when White mates.
func MateIn(n, depth int) Score {
	return evaluator.MateIn(n, depth)
}
