package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/freeeve/uci"
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/features"
)

// EngineConfig configures a UCI engine subprocess.
type EngineConfig struct {
	// Path is the engine executable, e.g. /usr/bin/stockfish.
	Path string
	// HashMB is the transposition table size. Zero keeps the engine default.
	HashMB int
	// Threads is the search thread count. Zero keeps the engine default.
	Threads int
	Logger  *zap.Logger
}

// Engine evaluates positions with a UCI engine subprocess.
type Engine struct {
	mu     sync.Mutex
	engine *uci.Engine
	logger *zap.Logger
	closed bool
}

var _ Evaluator = (*Engine)(nil)

// NewEngine starts the engine at cfg.Path.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("evaluator: engine path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	eng, err := uci.NewEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("starting engine %s: %w", cfg.Path, err)
	}
	opts := uci.Options{
		Hash:    cfg.HashMB,
		Threads: cfg.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("setting engine options: %w", err)
	}

	logger.Info("engine started",
		zap.String("path", cfg.Path),
		zap.Int("hashMB", cfg.HashMB),
		zap.Int("threads", cfg.Threads),
	)
	return &Engine{engine: eng, logger: logger}, nil
}

// EngineFactory opens a fresh engine process per call.
func EngineFactory(cfg EngineConfig) Factory {
	return func(context.Context) (Evaluator, error) {
		return NewEngine(cfg)
	}
}

// Evaluate searches fen to depth. The search itself cannot be interrupted;
// ctx is checked before it starts.
func (e *Engine) Evaluate(ctx context.Context, fen string, depth int) (Score, error) {
	if err := validDepth(depth); err != nil {
		return Score{}, err
	}
	if err := ctx.Err(); err != nil {
		return Score{}, err
	}
	side, err := features.SideToMove(fen)
	if err != nil {
		return Score{}, fmt.Errorf("evaluating %q: %w", fen, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Score{}, ErrClosed
	}

	if err := e.engine.SetFEN(fen); err != nil {
		return Score{}, fmt.Errorf("set FEN: %w", err)
	}
	results, err := e.engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return Score{}, fmt.Errorf("engine search: %w", err)
	}
	if len(results.Results) == 0 {
		return Score{}, ErrNoScore
	}

	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}

	// UCI scores are from the side to move.
	score := best.Score
	if side == features.Black {
		score = -score
	}
	if best.Mate {
		return MateIn(score, best.Depth), nil
	}
	return Cp(score, best.Depth), nil
}

// Close stops the engine process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.engine.Close()
	e.logger.Debug("engine stopped")
	return nil
}
