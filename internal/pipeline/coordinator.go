// Package pipeline runs the export of one input file: a producer goroutine
// reads games and writes their summary rows, and a single consumer turns
// each queued game into move rows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/evaluator"
	"github.com/discochess/pgn2data/internal/moves"
	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/summary"
	"github.com/discochess/pgn2data/internal/table"
)

// Config configures a Coordinator.
type Config struct {
	// Processor writes move rows. Required unless every Run is games-only.
	Processor *moves.Processor
	// QueueSize bounds the task queue; 0 means unbounded.
	QueueSize int
	// Depth is passed to the evaluator with every position.
	Depth  int
	Logger *zap.Logger
	Stats  stats.Collector

	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

// Coordinator runs files one after another. Game order numbers continue
// across runs, so game_order is unique within one export's games table.
type Coordinator struct {
	processor *moves.Processor
	queueSize int
	depth     int
	logger    *zap.Logger
	stats     stats.Collector
	newID     func() string
	now       func() time.Time

	order int
}

// Summary reports what one Run wrote.
type Summary struct {
	Games   int
	Plies   int
	Skipped int
}

// New returns a coordinator.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		processor: cfg.Processor,
		queueSize: cfg.QueueSize,
		depth:     cfg.Depth,
		logger:    cfg.Logger,
		stats:     cfg.Stats,
		newID:     cfg.NewID,
		now:       cfg.Now,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.stats == nil {
		c.stats = stats.NewNoop()
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.depth <= 0 {
		c.depth = evaluator.DefaultDepth
	}
	return c
}

// Games returns the number of games assigned an order so far.
func (c *Coordinator) Games() int {
	return c.order
}

// Run exports every game of src. Summary rows go to games; when movesOut
// is non-nil each game is also queued for move processing with ev. Run
// returns once the queue is drained, so the caller may then close the
// writers and the evaluator.
func (c *Coordinator) Run(ctx context.Context, src chessgame.Source, games, movesOut table.RowWriter, ev evaluator.Evaluator) (sum Summary, err error) {
	defer func() {
		if s, ok := src.(interface{ Skipped() int }); ok {
			sum.Skipped = s.Skipped()
		}
	}()

	if movesOut == nil {
		n, err := c.produce(ctx, src, games, func(*chessgame.Game) error { return nil })
		sum.Games = n
		return sum, err
	}
	if c.processor == nil {
		return sum, errors.New("pipeline: moves output without a processor")
	}

	q := NewQueue(c.queueSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer q.Close()
		n, err := c.produce(gctx, src, games, func(game *chessgame.Game) error {
			if err := q.Put(gctx, moves.Task{
				Game:      game,
				Moves:     movesOut,
				Evaluator: ev,
				Depth:     c.depth,
			}); err != nil {
				return err
			}
			c.stats.SetGauge(stats.MetricQueueDepth, int64(q.Len()))
			return nil
		})
		sum.Games = n
		return err
	})

	g.Go(func() error {
		for {
			task, err := q.Get(gctx)
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			if err != nil {
				return err
			}
			c.stats.SetGauge(stats.MetricQueueDepth, int64(q.Len()))
			n, err := c.processor.Process(gctx, task)
			sum.Plies += n
			if err != nil {
				return err
			}
		}
	})

	err = g.Wait()
	return sum, err
}

// produce reads src to the end, writing a summary row for each game before
// handing it to enqueue.
func (c *Coordinator) produce(ctx context.Context, src chessgame.Source, games table.RowWriter, enqueue func(*chessgame.Game) error) (int, error) {
	n := 0
	for {
		game, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("reading game %d: %w", n+1, err)
		}

		c.order++
		game.ID = c.newID()
		game.Order = c.order

		if err := summary.Write(games, game, c.now()); err != nil {
			return n, fmt.Errorf("writing game %s: %w", game.ID, err)
		}
		n++
		c.stats.IncCounter(stats.MetricGamesExported, 1)
		c.logger.Debug("game read",
			zap.String("gameID", game.ID),
			zap.Int("order", game.Order),
			zap.Int("plies", game.Len()),
		)

		if err := enqueue(game); err != nil {
			return n, err
		}
	}
}
