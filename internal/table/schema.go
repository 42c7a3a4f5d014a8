// Package table writes the exported datasets as CSV, one table per output
// file, with an optional compression codec.
package table

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrColumnCount indicates a row whose width differs from the header.
var ErrColumnCount = errors.New("table: row width does not match columns")

// GameColumns are the games table columns in order.
var GameColumns = []string{
	"game_id", "game_order", "event", "site", "date_played", "round",
	"white", "black", "result",
	"white_elo", "white_rating_diff", "black_elo", "black_rating_diff",
	"white_title", "black_title",
	"winner", "winner_elo", "loser", "loser_elo", "winner_loser_elo_diff",
	"eco", "termination", "time_control", "utc_date", "utc_time",
	"variant", "ply_count", "date_created", "file_name",
}

// EvalColumns trail the moves columns when an evaluator is configured.
var EvalColumns = []string{
	"evaluation", "evaluation_prev", "evaluation_delta", "evaluation_depth",
}

// MoveColumns are the moves table columns in order, without evaluation.
var MoveColumns = moveColumns()

func moveColumns() []string {
	cols := []string{
		"game_id", "move_no", "move_no_pair", "player", "notation", "move",
		"from_square", "to_square", "piece", "color", "fen",
		"is_check", "is_check_mate", "is_fifty_moves",
		"is_fivefold_repetition", "is_game_over", "is_insufficient_material",
		"white_count", "black_count",
		"white_pawn_count", "black_pawn_count",
		"white_queen_count", "black_queen_count",
		"white_bishop_count", "black_bishop_count",
		"white_knight_count", "black_knight_count",
		"white_rook_count", "black_rook_count",
		"captured_score_for_white", "captured_score_for_black",
	}
	for _, field := range []string{"white_count", "white_value", "black_count", "black_value"} {
		for rank := 1; rank <= 8; rank++ {
			cols = append(cols, fmt.Sprintf("fen_row%d_%s", rank, field))
		}
	}
	return append(cols, "move_sequence")
}

// Schema is the column layout of one export, resolved once before any row
// is written.
type Schema struct {
	Games []string
	Moves []string
	// Eval reports whether Moves ends with EvalColumns.
	Eval bool
}

// NewSchema returns the layout for an export with or without evaluation.
func NewSchema(eval bool) Schema {
	s := Schema{
		Games: append([]string(nil), GameColumns...),
		Moves: append([]string(nil), MoveColumns...),
		Eval:  eval,
	}
	if eval {
		s.Moves = append(s.Moves, EvalColumns...)
	}
	return s
}

// RowWriter accepts rows laid out as its Columns.
type RowWriter interface {
	Columns() []string
	WriteRow(values []string) error
}

// Bool formats a flag as "1" or "0".
func Bool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Float formats a float with at least one decimal, e.g. "0.0" or "-2.35".
func Float(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// Int formats an integer cell.
func Int(n int) string {
	return strconv.Itoa(n)
}

func checkWidth(columns, values []string) error {
	if len(values) != len(columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrColumnCount, len(values), len(columns))
	}
	return nil
}
