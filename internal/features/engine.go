package features

import (
	"strings"

	"go.uber.org/zap"
)

// Ranks is the number of '/'-separated segments in a placement.
const Ranks = 8

// RankStats holds piece counts (king included) and material values (king
// excluded) for one placement segment.
type RankStats struct {
	WhiteCount int
	WhiteValue int
	BlackCount int
	BlackValue int
}

// RankTable holds RankStats for every segment, index 0 being the segment
// printed first (rank 8 on a standard board).
type RankTable [Ranks]RankStats

// Placement is the board field of a FEN string, e.g.
// "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR".
type Placement string

// StartPlacement is the placement of the standard initial position.
const StartPlacement Placement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// NewPlacement returns the placement field of fen. Fields after the first
// space (side to move, castling, en passant, clocks) are dropped.
func NewPlacement(fen string) Placement {
	fen = strings.TrimSpace(fen)
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		fen = fen[:i]
	}
	return Placement(fen)
}

// Engine computes placement features. Out-of-domain arguments are logged
// and degrade to zero values.
type Engine struct {
	logger *zap.Logger
}

// NewEngine returns an engine logging to logger. A nil logger discards
// the warnings.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// PieceCount counts the pieces of type t and color c in p. An invalid type
// or color is logged and counts as 0.
func (e *Engine) PieceCount(p Placement, t PieceType, c Color) int {
	if !t.Valid() {
		e.logger.Warn("invalid piece type", zap.Int("pieceType", int(t)), zap.String("placement", string(p)))
		return 0
	}
	if !c.Valid() {
		e.logger.Warn("invalid color", zap.Int("color", int(c)), zap.String("placement", string(p)))
		return 0
	}
	letter := Piece{Type: t, Color: c}.Letter()
	return strings.Count(string(p), string(letter))
}

// TotalPieceCount returns the number of white and black pieces, kings
// included.
func (p Placement) TotalPieceCount() (white, black int) {
	for i := 0; i < len(p); i++ {
		piece, ok := PieceFromLetter(p[i])
		if !ok {
			continue
		}
		if piece.Color == White {
			white++
		} else {
			black++
		}
	}
	return white, black
}

// CapturedScore returns the material value of the opponent pieces missing
// from p, measured against the standard starting counts. Promotions are not
// accounted for, so the score can drop below zero.
func (e *Engine) CapturedScore(p Placement, c Color) int {
	if !c.Valid() {
		e.logger.Warn("invalid color", zap.Int("color", int(c)), zap.String("placement", string(p)))
		return 0
	}
	return capturedScore(p.counts(), c)
}

func capturedScore(counts [2][6]int, c Color) int {
	opp := c.Other()
	score := 0
	for _, t := range CapturableTypes {
		score += (t.StartCount() - counts[opp][t]) * t.Value()
	}
	return score
}

// RankCountsAndValuation returns counts and valuations for rank, where rank
// 1 is the first placement segment. Ranks outside 1..8, or missing
// segments, are logged and yield a zero RankStats.
func (e *Engine) RankCountsAndValuation(p Placement, rank int) RankStats {
	if rank < 1 || rank > Ranks {
		e.logger.Warn("invalid placement rank", zap.Int("rank", rank), zap.String("placement", string(p)))
		return RankStats{}
	}
	segment, ok := p.segment(rank - 1)
	if !ok {
		e.logger.Warn("placement rank missing", zap.Int("rank", rank), zap.String("placement", string(p)))
		return RankStats{}
	}
	return scanSegment(segment)
}

// RankTable computes RankCountsAndValuation for all eight ranks in a single
// pass over the placement.
func (e *Engine) RankTable(p Placement) RankTable {
	var table RankTable
	s := string(p)
	for i := 0; i < Ranks; i++ {
		j := strings.IndexByte(s, '/')
		if j < 0 {
			table[i] = scanSegment(s)
			if i < Ranks-1 {
				e.logger.Warn("placement has fewer than 8 ranks",
					zap.Int("ranks", i+1), zap.String("placement", string(p)))
			}
			break
		}
		table[i] = scanSegment(s[:j])
		s = s[j+1:]
	}
	return table
}

func (p Placement) segment(i int) (string, bool) {
	parts := strings.Split(string(p), "/")
	if i >= len(parts) {
		return "", false
	}
	return parts[i], true
}

// counts tallies every piece in one scan, indexed [color][type].
func (p Placement) counts() [2][6]int {
	var n [2][6]int
	for i := 0; i < len(p); i++ {
		if piece, ok := PieceFromLetter(p[i]); ok {
			n[piece.Color][piece.Type]++
		}
	}
	return n
}

func scanSegment(s string) RankStats {
	var r RankStats
	for i := 0; i < len(s); i++ {
		piece, ok := PieceFromLetter(s[i])
		if !ok {
			// Digits are empty-square runs.
			continue
		}
		if piece.Color == White {
			r.WhiteCount++
			r.WhiteValue += piece.Type.Value()
		} else {
			r.BlackCount++
			r.BlackValue += piece.Type.Value()
		}
	}
	return r
}
