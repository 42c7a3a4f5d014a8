package evaluator

import (
	"context"
	"fmt"

	"github.com/discochess/pgn2data/internal/evaldb"
)

// Lookup reads scores from a precomputed evaluation database. The stored
// depth is reported as is; the requested depth only has to be valid.
type Lookup struct {
	db *evaldb.DB
}

var _ Evaluator = (*Lookup)(nil)

// NewLookup evaluates through db. Closing the Lookup leaves db open.
func NewLookup(db *evaldb.DB) *Lookup {
	return &Lookup{db: db}
}

// LookupFactory shares one database across every evaluator it opens.
func LookupFactory(db *evaldb.DB) Factory {
	return func(context.Context) (Evaluator, error) {
		return NewLookup(db), nil
	}
}

// Evaluate looks fen up. Positions missing from the database return an
// error wrapping evaldb.ErrNotFound.
func (l *Lookup) Evaluate(ctx context.Context, fen string, depth int) (Score, error) {
	if err := validDepth(depth); err != nil {
		return Score{}, err
	}
	ev, err := l.db.Lookup(ctx, fen)
	if err != nil {
		return Score{}, err
	}
	switch {
	case ev.Centipawns != nil:
		return Cp(*ev.Centipawns, ev.Depth), nil
	case ev.Mate != nil:
		return MateIn(*ev.Mate, ev.Depth), nil
	}
	return Score{}, fmt.Errorf("%w: %s", ErrNoScore, fen)
}

// Close is a no-op; the database belongs to the caller.
func (l *Lookup) Close() error {
	return nil
}
