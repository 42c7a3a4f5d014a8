// Package moves turns the mainline of a game into moves table rows, one per
// ply, with material features and an optional engine evaluation.
package moves

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/evaluator"
	"github.com/discochess/pgn2data/internal/features"
	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/table"
)

// SequenceSeparator joins the SAN moves of move_sequence.
const SequenceSeparator = "|"

// Task is one game queued for move processing. The consumer owns Game once
// the task is queued.
type Task struct {
	Game  *chessgame.Game
	Moves table.RowWriter
	// Evaluator is nil when the export has no evaluation columns.
	Evaluator evaluator.Evaluator
	Depth     int
}

// Config configures a Processor.
type Config struct {
	// Engine computes the features. Nil uses one logging to Logger.
	Engine *features.Engine
	// Cache memoizes rank tables. Nil computes them every time.
	Cache  *features.PositionCache
	Schema table.Schema
	Logger *zap.Logger
	Stats  stats.Collector
}

// Processor writes the move rows of one game at a time. It is used by a
// single consumer goroutine.
type Processor struct {
	engine *features.Engine
	cache  *features.PositionCache
	schema table.Schema
	logger *zap.Logger
	stats  stats.Collector
}

// New returns a processor writing rows laid out as cfg.Schema.Moves.
func New(cfg Config) *Processor {
	p := &Processor{
		engine: cfg.Engine,
		cache:  cfg.Cache,
		schema: cfg.Schema,
		logger: cfg.Logger,
		stats:  cfg.Stats,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.stats == nil {
		p.stats = stats.NewNoop()
	}
	if p.engine == nil {
		p.engine = features.NewEngine(p.logger.Named("features"))
	}
	if len(p.schema.Moves) == 0 {
		p.schema = table.NewSchema(false)
	}
	return p
}

// Process replays task.Game and writes one row per ply, returning the
// number of rows written.
//
// Evaluation failures never drop a row: the ply is scored 0 and a warning
// is logged. A move the rules engine rejects ends the game early with the
// rows written so far and no error. Write errors and cancellation are
// returned.
func (p *Processor) Process(ctx context.Context, task Task) (int, error) {
	start := time.Now()
	g := task.Game
	logger := p.logger.With(zap.String("gameID", g.ID), zap.Int("order", g.Order))

	var (
		written  int
		pair     = 1
		previous [2]int
		sequence = make([]string, 0, g.Len())
	)

	err := g.Replay(func(ply chessgame.Ply) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sequence = append(sequence, ply.SAN)

		row := p.row(g, ply, pair, sequence)
		if p.schema.Eval {
			current := p.evaluate(ctx, logger, task, ply)
			prev := previous[ply.Color]
			row = append(row,
				table.Float(evaluator.Pawns(current)),
				table.Float(evaluator.Pawns(prev)),
				table.Float(evaluator.Pawns(current-prev)),
				table.Int(task.Depth),
			)
			previous[ply.Color] = current
		}

		if err := task.Moves.WriteRow(row); err != nil {
			return fmt.Errorf("writing ply %d: %w", ply.Index, err)
		}
		written++
		p.stats.IncCounter(stats.MetricPliesExported, 1)
		if ply.Index%2 == 0 {
			pair++
		}
		return nil
	})

	p.stats.ObserveHistogram(stats.MetricGameSeconds, time.Since(start).Seconds())

	if errors.Is(err, chessgame.ErrIllegalMove) {
		logger.Warn("invalid move, game truncated",
			zap.Int("plies", written),
			zap.Error(err),
		)
		p.stats.IncCounter(stats.MetricInvalidGames, 1)
		return written, nil
	}
	if err != nil {
		return written, fmt.Errorf("processing game %s: %w", g.ID, err)
	}
	return written, nil
}

// row builds the feature columns of a ply, up to and including
// move_sequence.
func (p *Processor) row(g *chessgame.Game, ply chessgame.Ply, pair int, sequence []string) []string {
	st := p.engine.Stats(ply.Placement, p.cache)

	row := make([]string, 0, len(p.schema.Moves))
	row = append(row,
		g.ID,
		table.Int(ply.Index),
		table.Int(pair),
		g.Headers.Player(ply.Color),
		ply.SAN,
		ply.UCI,
		ply.From,
		ply.To,
		ply.Piece.Symbol(),
		ply.Color.Name(),
		string(ply.Placement),
		table.Bool(ply.Check),
		table.Bool(ply.Checkmate),
		table.Bool(ply.FiftyMoves),
		table.Bool(ply.FivefoldRepetition),
		table.Bool(ply.GameOver),
		table.Bool(ply.InsufficientMaterial),
		table.Int(st.WhiteTotal),
		table.Int(st.BlackTotal),
	)
	for _, t := range countColumns {
		row = append(row,
			table.Int(st.Count(t, features.White)),
			table.Int(st.Count(t, features.Black)),
		)
	}
	row = append(row,
		table.Int(st.Captured[features.White]),
		table.Int(st.Captured[features.Black]),
	)
	for _, field := range rankFields {
		for _, r := range st.Ranks {
			row = append(row, table.Int(field(r)))
		}
	}
	return append(row, strings.Join(sequence, SequenceSeparator))
}

// countColumns is the piece order of the per-type count columns.
var countColumns = []features.PieceType{
	features.Pawn, features.Queen, features.Bishop, features.Knight, features.Rook,
}

// rankFields is the order of the fen_row column groups.
var rankFields = []func(features.RankStats) int{
	func(r features.RankStats) int { return r.WhiteCount },
	func(r features.RankStats) int { return r.WhiteValue },
	func(r features.RankStats) int { return r.BlackCount },
	func(r features.RankStats) int { return r.BlackValue },
}

// evaluate returns the mover's evaluation of the position after ply in
// centipawns, or 0 when there is no evaluator or it fails. Mated and
// stalemated positions have no move to search and are scored directly.
func (p *Processor) evaluate(ctx context.Context, logger *zap.Logger, task Task, ply chessgame.Ply) int {
	switch {
	case task.Evaluator == nil:
		return 0
	case ply.Checkmate:
		return evaluator.MateScore
	case ply.Stalemate:
		return 0
	}
	start := time.Now()
	score, err := task.Evaluator.Evaluate(ctx, ply.FEN, task.Depth)
	p.stats.ObserveHistogram(stats.MetricEvaluationSeconds, time.Since(start).Seconds())
	p.stats.IncCounter(stats.MetricEvaluations, 1)

	var cp int
	if err == nil {
		cp, err = score.For(ply.Color)
	}
	if err != nil {
		logger.Warn("evaluation failed, using 0",
			zap.Int("ply", ply.Index),
			zap.String("fen", ply.FEN),
			zap.Error(err),
		)
		p.stats.IncCounter(stats.MetricEvaluationFailures, 1)
		return 0
	}
	return cp
}
