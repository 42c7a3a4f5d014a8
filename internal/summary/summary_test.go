package summary

import (
	"testing"
	"time"

	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/table"
)

func TestNewOutcome(t *testing.T) {
	players := chessgame.Headers{"White": "Carlsen", "Black": "Nakamura"}
	with := func(extra map[string]string) chessgame.Headers {
		h := chessgame.Headers{}
		for k, v := range players {
			h[k] = v
		}
		for k, v := range extra {
			h[k] = v
		}
		return h
	}

	tests := []struct {
		name    string
		headers chessgame.Headers
		want    Outcome
	}{
		{
			name:    "white wins",
			headers: with(map[string]string{"Result": "1-0", "WhiteElo": "2850", "BlackElo": "2780"}),
			want:    Outcome{Winner: "Carlsen", WinnerElo: "2850", Loser: "Nakamura", LoserElo: "2780", EloDiff: "70"},
		},
		{
			name:    "black wins",
			headers: with(map[string]string{"Result": "0-1", "WhiteElo": "2850", "BlackElo": "2780"}),
			want:    Outcome{Winner: "Nakamura", WinnerElo: "2780", Loser: "Carlsen", LoserElo: "2850", EloDiff: "-70"},
		},
		{
			name:    "draw",
			headers: with(map[string]string{"Result": "1/2-1/2", "WhiteElo": "2850", "BlackElo": "2780"}),
			want:    Outcome{Winner: "draw", Loser: "draw", EloDiff: "0"},
		},
		{
			name:    "unknown rating",
			headers: with(map[string]string{"Result": "1-0", "WhiteElo": "?", "BlackElo": "2780"}),
			want:    Outcome{Winner: "Carlsen", WinnerElo: "?", Loser: "Nakamura", LoserElo: "2780", EloDiff: "0"},
		},
		{
			name:    "no ratings",
			headers: with(map[string]string{"Result": "1-0"}),
			want:    Outcome{Winner: "Carlsen", Loser: "Nakamura"},
		},
		{
			name:    "unfinished",
			headers: with(map[string]string{"Result": "*"}),
			want:    Outcome{},
		},
		{
			name:    "no result tag",
			headers: with(nil),
			want:    Outcome{},
		},
		{
			name:    "missing black tag",
			headers: chessgame.Headers{"White": "Carlsen", "Result": "1-0"},
			want:    Outcome{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewOutcome(tt.headers); got != tt.want {
				t.Errorf("NewOutcome() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRow(t *testing.T) {
	g, err := chessgame.Parse(`[Event "Casual"]
[White "alice"]
[Black "bob"]
[Result "0-1"]
[ECO "C20"]

1. e4 e5 0-1
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	g.ID = "id-1"
	g.Order = 3
	g.Source = "/data/in/games.pgn"

	now := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("CET", 3600))
	buf := table.NewBuffer(table.GameColumns)
	if err := Write(buf, g, now); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := map[string]string{
		"game_id":               "id-1",
		"game_order":            "3",
		"event":                 "Casual",
		"site":                  "",
		"winner":                "bob",
		"loser":                 "alice",
		"winner_loser_elo_diff": "",
		"eco":                   "C20",
		"date_created":          "2024-03-09T16:04:05+0000",
		"file_name":             "games.pgn",
	}
	for col, v := range want {
		got, ok := buf.Get(0, col)
		if !ok {
			t.Errorf("column %s missing", col)
			continue
		}
		if got != v {
			t.Errorf("%s = %q, want %q", col, got, v)
		}
	}
}
