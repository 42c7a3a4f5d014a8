// Package chessgame adapts github.com/notnil/chess to the exporter: it turns
// PGN text into games with header metadata and replays their mainline one
// ply at a time.
package chessgame

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"github.com/discochess/pgn2data/internal/features"
)

// ErrIllegalMove indicates a mainline move the rules engine rejected on
// replay.
var ErrIllegalMove = errors.New("chessgame: illegal move")

// Standard header keys read by the exporter.
const (
	TagEvent           = "Event"
	TagSite            = "Site"
	TagDate            = "Date"
	TagRound           = "Round"
	TagWhite           = "White"
	TagBlack           = "Black"
	TagResult          = "Result"
	TagWhiteElo        = "WhiteElo"
	TagWhiteRatingDiff = "WhiteRatingDiff"
	TagBlackElo        = "BlackElo"
	TagBlackRatingDiff = "BlackRatingDiff"
	TagWhiteTitle      = "WhiteTitle"
	TagBlackTitle      = "BlackTitle"
	TagECO             = "ECO"
	TagTermination     = "Termination"
	TagTimeControl     = "TimeControl"
	TagUTCDate         = "UTCDate"
	TagUTCTime         = "UTCTime"
	TagVariant         = "Variant"
	TagPlyCount        = "PlyCount"
)

// Headers holds a game's tag pairs.
type Headers map[string]string

// Get returns the value of tag k, or "" when absent.
func (h Headers) Get(k string) string {
	return h[k]
}

// Has reports whether tag k is present.
func (h Headers) Has(k string) bool {
	_, ok := h[k]
	return ok
}

// Player returns the name of the player of color c.
func (h Headers) Player(c features.Color) string {
	switch c {
	case features.White:
		return h[TagWhite]
	case features.Black:
		return h[TagBlack]
	}
	return ""
}

// Game is one parsed game record. The mainline is kept in rules-engine form
// and only expanded into plies by Replay.
type Game struct {
	// ID is assigned by the producer when the game is read.
	ID string
	// Order is the 1-based position of the game within the export.
	Order int
	// Source is the base name of the file the game came from.
	Source string

	Headers Headers

	start *chess.Position
	moves []*chess.Move
}

// NewGame wraps a rules-engine game. Only its mainline and tag pairs are
// retained.
func NewGame(g *chess.Game) *Game {
	headers := make(Headers, len(g.TagPairs()))
	for _, tp := range g.TagPairs() {
		headers[tp.Key] = tp.Value
	}
	return &Game{
		Headers: headers,
		start:   g.Positions()[0],
		moves:   g.Moves(),
	}
}

// Len returns the number of mainline plies.
func (g *Game) Len() int {
	return len(g.moves)
}

// Ply is one mainline half-move and the position it produced.
type Ply struct {
	// Index is 1-based and contiguous within a game.
	Index int
	// Color is the side that made the move, as reported by the position
	// the move was played from.
	Color features.Color

	SAN  string
	UCI  string
	From string
	To   string

	// Piece is the piece standing on To after the move, so a promotion
	// reports the promoted piece.
	Piece features.Piece

	// FEN is the full position after the move.
	FEN string
	// Placement is the board field of FEN.
	Placement features.Placement

	Check                bool
	Checkmate            bool
	Stalemate            bool
	FiftyMoves           bool
	FivefoldRepetition   bool
	GameOver             bool
	InsufficientMaterial bool
}

// Replay plays the mainline from the start position and calls fn for every
// ply in order. It stops at the first error returned by fn. A move the rules
// engine refuses ends the replay with ErrIllegalMove.
func (g *Game) Replay(fn func(Ply) error) error {
	fen, err := chess.FEN(g.start.String())
	if err != nil {
		return fmt.Errorf("loading start position: %w", err)
	}
	board := chess.NewGame(fen)
	notation := chess.AlgebraicNotation{}

	for i, mv := range g.moves {
		before := board.Position()
		san := notation.Encode(before, mv)
		if err := board.Move(mv); err != nil {
			return fmt.Errorf("%w: ply %d %s: %v", ErrIllegalMove, i+1, san, err)
		}
		after := board.Position()

		ply := Ply{
			Index:     i + 1,
			Color:     fromColor(before.Turn()),
			SAN:       san,
			UCI:       mv.String(),
			From:      mv.S1().String(),
			To:        mv.S2().String(),
			Piece:     fromPiece(after.Board().Piece(mv.S2())),
			FEN:       after.String(),
			Placement: features.Placement(after.Board().String()),
			Check:     mv.HasTag(chess.Check),
			GameOver:  board.Outcome() != chess.NoOutcome,
		}
		switch board.Method() {
		case chess.Checkmate:
			ply.Checkmate = true
		case chess.Stalemate:
			ply.Stalemate = true
		case chess.FivefoldRepetition:
			ply.FivefoldRepetition = true
		case chess.InsufficientMaterial:
			ply.InsufficientMaterial = true
		}
		for _, m := range board.EligibleDraws() {
			if m == chess.FiftyMoveRule {
				ply.FiftyMoves = true
			}
		}

		if err := fn(ply); err != nil {
			return err
		}
	}
	return nil
}

func fromColor(c chess.Color) features.Color {
	switch c {
	case chess.White:
		return features.White
	case chess.Black:
		return features.Black
	}
	return features.NoColor
}

var pieceTypes = map[chess.PieceType]features.PieceType{
	chess.Pawn:   features.Pawn,
	chess.Knight: features.Knight,
	chess.Bishop: features.Bishop,
	chess.Rook:   features.Rook,
	chess.Queen:  features.Queen,
	chess.King:   features.King,
}

func fromPiece(p chess.Piece) features.Piece {
	t, ok := pieceTypes[p.Type()]
	if !ok {
		return features.NoPiece
	}
	return features.Piece{Type: t, Color: fromColor(p.Color())}
}
