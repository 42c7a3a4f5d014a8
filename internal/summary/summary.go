// Package summary builds the games table row of a game from its tag pairs.
package summary

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/table"
)

// Draw is the winner and loser of a drawn game.
const Draw = "draw"

// TimestampLayout formats date_created, always in UTC.
const TimestampLayout = "2006-01-02T15:04:05+0000"

// Outcome holds the derived result columns of a game.
type Outcome struct {
	Winner    string
	WinnerElo string
	Loser     string
	LoserElo  string
	// EloDiff is empty when either rating tag is missing.
	EloDiff string
}

// NewOutcome derives winner and loser from the Result, White and Black
// tags. Unfinished games ("*") have no winner.
func NewOutcome(h chessgame.Headers) Outcome {
	var o Outcome
	white, black := h.Get(chessgame.TagWhite), h.Get(chessgame.TagBlack)
	bothPlayers := h.Has(chessgame.TagWhite) && h.Has(chessgame.TagBlack)

	if bothPlayers && h.Has(chessgame.TagResult) {
		switch h.Get(chessgame.TagResult) {
		case "1/2-1/2":
			o.Winner = Draw
		case "1-0":
			o.Winner = white
		case "0-1":
			o.Winner = black
		}
	}

	if bothPlayers {
		switch o.Winner {
		case black:
			o.Loser = white
		case white:
			o.Loser = black
		default:
			o.Loser = o.Winner
		}
	}

	if h.Has(chessgame.TagWhiteElo) && h.Has(chessgame.TagBlackElo) {
		whiteElo, blackElo := h.Get(chessgame.TagWhiteElo), h.Get(chessgame.TagBlackElo)
		switch o.Winner {
		case white:
			o.WinnerElo, o.LoserElo = whiteElo, blackElo
		case black:
			o.WinnerElo, o.LoserElo = blackElo, whiteElo
		}
		o.EloDiff = "0"
		w, werr := rating(o.WinnerElo)
		l, lerr := rating(o.LoserElo)
		if werr == nil && lerr == nil {
			o.EloDiff = strconv.Itoa(w - l)
		}
	}
	return o
}

// rating parses an all-digit rating; "?" and "" are errors.
func rating(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Row returns the games table row of g, laid out as table.GameColumns. now
// stamps date_created.
func Row(g *chessgame.Game, now time.Time) []string {
	h := g.Headers
	o := NewOutcome(h)
	return []string{
		g.ID,
		strconv.Itoa(g.Order),
		h.Get(chessgame.TagEvent),
		h.Get(chessgame.TagSite),
		h.Get(chessgame.TagDate),
		h.Get(chessgame.TagRound),
		h.Get(chessgame.TagWhite),
		h.Get(chessgame.TagBlack),
		h.Get(chessgame.TagResult),
		h.Get(chessgame.TagWhiteElo),
		h.Get(chessgame.TagWhiteRatingDiff),
		h.Get(chessgame.TagBlackElo),
		h.Get(chessgame.TagBlackRatingDiff),
		h.Get(chessgame.TagWhiteTitle),
		h.Get(chessgame.TagBlackTitle),
		o.Winner,
		o.WinnerElo,
		o.Loser,
		o.LoserElo,
		o.EloDiff,
		h.Get(chessgame.TagECO),
		h.Get(chessgame.TagTermination),
		h.Get(chessgame.TagTimeControl),
		h.Get(chessgame.TagUTCDate),
		h.Get(chessgame.TagUTCTime),
		h.Get(chessgame.TagVariant),
		h.Get(chessgame.TagPlyCount),
		now.UTC().Format(TimestampLayout),
		filepath.Base(g.Source),
	}
}

// Write appends g's row to w.
func Write(w table.RowWriter, g *chessgame.Game, now time.Time) error {
	return w.WriteRow(Row(g, now))
}
