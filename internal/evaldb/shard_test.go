package evaldb

import (
	"testing"
)

func TestStrategyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"material", "material", false},
		{"", "material", false},
		{"fnv32", "fnv32", false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := StrategyByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("StrategyByName(%q) error = %v", tt.name, err)
			continue
		}
		if err == nil && got.Name() != tt.want {
			t.Errorf("StrategyByName(%q) = %s, want %s", tt.name, got.Name(), tt.want)
		}
	}
}

func TestMaterialStrategy_ShardID(t *testing.T) {
	s := MaterialStrategy()
	const total = 1 << 19

	tests := []struct {
		name string
		fen  string
		want int
	}{
		// 1 queen, 2 rooks, 4 minors each side, white to move.
		{"start", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1 | 1<<3 | 2<<6 | 2<<9 | 4<<12 | 4<<15},
		{"start black to move", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1", 1 | 1<<3 | 2<<6 | 2<<9 | 4<<12 | 4<<15 | 1<<18},
		{"rook endgame", "8/8/8/4k3/8/8/4K3/4R3 w - - 0 1", 1 << 6},
		{"capped queens", "QQQQQQQQ/QQk5/8/8/8/8/8/4K3 w - - 0 1", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShardID(tt.fen, total); got != tt.want {
				t.Errorf("ShardID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStrategies_InRangeAndStable(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		"garbage",
	}
	for _, s := range []Strategy{MaterialStrategy(), FNVStrategy()} {
		for _, fen := range fens {
			id := s.ShardID(fen, 256)
			if id < 0 || id >= 256 {
				t.Errorf("%s ShardID(%q) = %d out of range", s.Name(), fen, id)
			}
			if again := s.ShardID(fen, 256); again != id {
				t.Errorf("%s ShardID(%q) unstable: %d then %d", s.Name(), fen, id, again)
			}
		}
	}
}

func TestFNVStrategy_IgnoresClocks(t *testing.T) {
	s := FNVStrategy()
	a := s.ShardID("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1024)
	b := s.ShardID("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 7 30", 1024)
	if a != b {
		t.Errorf("clocks changed shard: %d vs %d", a, b)
	}
}

func TestSearch(t *testing.T) {
	data := []byte(`{"fen":"a","evals":[]}
{"fen":"c","evals":[{"pvs":[{"cp":5,"line":"x"}],"knodes":1,"depth":3}]}

{"fen":"e","evals":[]}
`)
	rec, err := search(data, "c")
	if err != nil {
		t.Fatalf("search(c) error = %v", err)
	}
	if ev := rec.best(); ev.Depth != 3 || *ev.Centipawns != 5 {
		t.Errorf("best() = %+v", ev)
	}
	for _, missing := range []string{"b", "f", ""} {
		if _, err := search(data, missing); err != errNoRecord {
			t.Errorf("search(%q) error = %v, want errNoRecord", missing, err)
		}
	}
	if ev := (&record{FEN: "a"}).best(); ev.Centipawns != nil || ev.Mate != nil {
		t.Errorf("best() of empty record = %+v", ev)
	}
}

func BenchmarkStrategy_ShardID(b *testing.B) {
	const fen = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq -"
	for _, s := range []Strategy{MaterialStrategy(), FNVStrategy()} {
		b.Run(s.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s.ShardID(fen, DefaultTotalShards)
			}
		})
	}
}
