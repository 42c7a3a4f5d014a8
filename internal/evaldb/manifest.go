package evaldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
)

// ManifestKey is the object key of the manifest at the database root.
const ManifestKey = "manifest.json"

// Manifest describes how a database was built.
type Manifest struct {
	Version     int       `json:"version"`
	TotalShards int       `json:"total_shards"`
	Strategy    string    `json:"strategy"`
	RecordCount int64     `json:"record_count"`
	ShardCount  int       `json:"shard_count"`
	BuiltAt     time.Time `json:"built_at"`
	SourceURL   string    `json:"source_url,omitempty"`
	Compression string    `json:"compression"`
}

// ReadManifest loads the manifest from the root of b.
func ReadManifest(ctx context.Context, b blob.Bucket) (*Manifest, error) {
	data, err := blob.ReadAll(ctx, b, ManifestKey)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// options turns the manifest into DB options.
func (m *Manifest) options() (Option, error) {
	strategy, err := StrategyByName(m.Strategy)
	if err != nil {
		return nil, err
	}
	c, err := codec.ForName(m.Compression)
	if err != nil {
		return nil, fmt.Errorf("manifest compression: %w", err)
	}
	if m.TotalShards <= 0 {
		return nil, fmt.Errorf("evaldb: manifest has invalid total_shards %d", m.TotalShards)
	}
	return optionFunc(func(o *options) {
		o.strategy = strategy
		o.codec = c
		o.totalShards = m.TotalShards
	}), nil
}
