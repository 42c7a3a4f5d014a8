package features

import (
	"errors"
	"strings"
)

// ErrInvalidFEN indicates a malformed FEN string.
var ErrInvalidFEN = errors.New("features: invalid FEN")

// NormalizeFEN keeps the first four FEN fields (placement, side to move,
// castling, en passant) and drops the clocks, so that transpositions reached
// at different move numbers share a key. The en passant square is kept only
// when a pawn of the side to move stands beside the pushed pawn, matching
// the Lichess evaluation export.
func NormalizeFEN(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}
	p := Placement(parts[0])
	if !p.Valid() {
		return "", ErrInvalidFEN
	}
	side, err := parseSide(parts[1])
	if err != nil {
		return "", err
	}
	if !p.canCaptureEnPassant(side, parts[3]) {
		parts[3] = "-"
	}
	return strings.Join(parts[:4], " "), nil
}

// canCaptureEnPassant reports whether a pawn of side could capture onto
// the en passant square ep. Pins are not considered.
func (p Placement) canCaptureEnPassant(side Color, ep string) bool {
	if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' {
		return false
	}
	// The pushed pawn stands on rank 4 (White pushed) or 5 (Black pushed).
	var rank int
	switch {
	case side == Black && ep[1] == '3':
		rank = 4
	case side == White && ep[1] == '6':
		rank = 5
	default:
		return false
	}
	capturer := Piece{Type: Pawn, Color: side}.Letter()
	file := int(ep[0] - 'a')
	for _, f := range []int{file - 1, file + 1} {
		if f >= 0 && f < 8 && p.at(f, rank) == capturer {
			return true
		}
	}
	return false
}

// at returns the letter on file (0 = a) and rank (1..8), or 0 when the
// square is empty. p must be Valid.
func (p Placement) at(file, rank int) byte {
	segment, ok := p.segment(Ranks - rank)
	if !ok {
		return 0
	}
	f := 0
	for i := 0; i < len(segment); i++ {
		ch := segment[i]
		if ch >= '1' && ch <= '8' {
			f += int(ch - '0')
			if f > file {
				return 0
			}
			continue
		}
		if f == file {
			return ch
		}
		f++
	}
	return 0
}

// SideToMove returns the color in the second FEN field.
func SideToMove(fen string) (Color, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return NoColor, ErrInvalidFEN
	}
	return parseSide(parts[1])
}

func parseSide(s string) (Color, error) {
	switch s {
	case "w":
		return White, nil
	case "b":
		return Black, nil
	}
	return NoColor, ErrInvalidFEN
}

// Valid reports whether p has eight segments of eight squares each, built
// only from piece letters and digit runs.
func (p Placement) Valid() bool {
	ranks := strings.Split(string(p), "/")
	if len(ranks) != Ranks {
		return false
	}
	for _, rank := range ranks {
		squares := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			default:
				if _, ok := PieceFromLetter(ch); !ok {
					return false
				}
				squares++
			}
		}
		if squares != 8 {
			return false
		}
	}
	return true
}
