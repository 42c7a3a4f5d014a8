package evaldb

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/discochess/pgn2data/internal/features"
)

// Strategy maps a normalized FEN to a shard.
type Strategy interface {
	// Name is the identifier stored in the manifest.
	Name() string
	// ShardID returns a shard in [0, totalShards).
	ShardID(fen string, totalShards int) int
}

// StrategyByName returns the strategy a manifest names.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "material", "":
		return MaterialStrategy(), nil
	case "fnv32":
		return FNVStrategy(), nil
	}
	return nil, fmt.Errorf("evaldb: unknown shard strategy %q", name)
}

type materialStrategy struct{}

// material only sees validated placements, so it has nothing to log.
var material = features.NewEngine(nil)

// MaterialStrategy groups positions by material balance and side to move,
// so that consecutive positions of a game tend to share a shard.
func MaterialStrategy() Strategy { return materialStrategy{} }

func (materialStrategy) Name() string { return "material" }

// ShardID packs capped piece counts into a 19-bit key:
//
//	bits 0-2   white queens     bits 3-5   black queens
//	bits 6-8   white rooks      bits 9-11  black rooks
//	bits 12-14 white minors     bits 15-17 black minors
//	bit 18     black to move
//
// then reduces it modulo totalShards. Malformed FENs fall back to FNV.
func (materialStrategy) ShardID(fen string, totalShards int) int {
	placement := features.NewPlacement(fen)
	if !placement.Valid() {
		return fnvShard(fen, totalShards)
	}
	s := material.Stats(placement, nil)

	capped := func(t features.PieceType, c features.Color) uint32 {
		return uint32(min(s.Count(t, c), 7))
	}
	minors := func(c features.Color) uint32 {
		return uint32(min(s.Count(features.Bishop, c)+s.Count(features.Knight, c), 7))
	}

	id := capped(features.Queen, features.White) |
		capped(features.Queen, features.Black)<<3 |
		capped(features.Rook, features.White)<<6 |
		capped(features.Rook, features.Black)<<9 |
		minors(features.White)<<12 |
		minors(features.Black)<<15
	if side, err := features.SideToMove(fen); err == nil && side == features.Black {
		id |= 1 << 18
	}
	return int(id % uint32(totalShards))
}

type fnvStrategy struct{}

// FNVStrategy spreads positions uniformly by FNV-1a hash of the FEN.
func FNVStrategy() Strategy { return fnvStrategy{} }

func (fnvStrategy) Name() string { return "fnv32" }

func (fnvStrategy) ShardID(fen string, totalShards int) int {
	if normalized, err := features.NormalizeFEN(fen); err == nil {
		fen = normalized
	}
	return fnvShard(strings.TrimSpace(fen), totalShards)
}

func fnvShard(s string, totalShards int) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(totalShards))
}
