// Package features derives material statistics from the board placement
// field of a FEN string.
//
// Everything here is a pure function of the placement text: no board is
// built and no move is simulated.
package features

import "strings"

// Color is the side owning a piece.
type Color int8

const (
	NoColor Color = iota - 1
	White
	Black
)

// Colors lists both sides in column order.
var Colors = [2]Color{White, Black}

// Valid reports whether c is White or Black.
func (c Color) Valid() bool {
	return c == White || c == Black
}

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// Name returns "White" or "Black".
func (c Color) Name() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return ""
}

func (c Color) String() string {
	if n := c.Name(); n != "" {
		return n
	}
	return "NoColor"
}

// PieceType is a kind of chess piece independent of color.
type PieceType int8

const (
	NoPieceType PieceType = iota - 1
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PieceTypes lists all six piece types.
var PieceTypes = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

// CapturableTypes lists the piece types counted by CapturedScore.
var CapturableTypes = [5]PieceType{Pawn, Knight, Bishop, Rook, Queen}

// Valid reports whether t is one of the six piece types.
func (t PieceType) Valid() bool {
	return t >= Pawn && t <= King
}

// Value is the material value used for valuations. Kings are worth 0.
func (t PieceType) Value() int {
	if !t.Valid() {
		return 0
	}
	return pieceValues[t]
}

// StartCount is the number of pieces of this type each side has at the
// start of a standard game.
func (t PieceType) StartCount() int {
	if !t.Valid() {
		return 0
	}
	return startCounts[t]
}

func (t PieceType) String() string {
	if !t.Valid() {
		return "NoPieceType"
	}
	return pieceNames[t]
}

var (
	pieceValues = [6]int{Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9, King: 0}
	startCounts = [6]int{Pawn: 8, Knight: 2, Bishop: 2, Rook: 2, Queen: 1, King: 1}
	pieceNames  = [6]string{Pawn: "pawn", Knight: "knight", Bishop: "bishop", Rook: "rook", Queen: "queen", King: "king"}
)

// Piece is a (type, color) pair.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece is the zero-information piece.
var NoPiece = Piece{Type: NoPieceType, Color: NoColor}

// Valid reports whether both the type and the color are valid.
func (p Piece) Valid() bool {
	return p.Type.Valid() && p.Color.Valid()
}

// Letter returns the FEN letter for p: uppercase for white, lowercase for
// black. An invalid piece yields 0.
func (p Piece) Letter() byte {
	if !p.Valid() {
		return 0
	}
	return letterTable[p.Color][p.Type]
}

// Symbol returns the uppercase letter of the piece type, e.g. "N".
func (p Piece) Symbol() string {
	if !p.Type.Valid() {
		return ""
	}
	return string(letterTable[White][p.Type])
}

func (p Piece) String() string {
	if !p.Valid() {
		return "-"
	}
	return string(p.Letter())
}

// letterTable is the single mapping between pieces and FEN letters.
var letterTable = [2][6]byte{
	White: {Pawn: 'P', Knight: 'N', Bishop: 'B', Rook: 'R', Queen: 'Q', King: 'K'},
	Black: {Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'},
}

// pieceByLetter is the inverse of letterTable, indexed by byte.
var pieceByLetter [256]Piece

func init() {
	for i := range pieceByLetter {
		pieceByLetter[i] = NoPiece
	}
	for _, c := range Colors {
		for _, t := range PieceTypes {
			pieceByLetter[letterTable[c][t]] = Piece{Type: t, Color: c}
		}
	}
}

// PieceFromLetter maps a FEN letter to its piece. ok is false for any byte
// that is not one of the twelve piece letters.
func PieceFromLetter(b byte) (p Piece, ok bool) {
	p = pieceByLetter[b]
	return p, p.Valid()
}

// ParsePieceType accepts a piece type name ("knight") or letter ("n", "N").
func ParsePieceType(s string) (PieceType, bool) {
	if len(s) == 1 {
		if p, ok := PieceFromLetter(s[0]); ok {
			return p.Type, true
		}
		return NoPieceType, false
	}
	s = strings.ToLower(s)
	for _, t := range PieceTypes {
		if pieceNames[t] == s {
			return t, true
		}
	}
	return NoPieceType, false
}
