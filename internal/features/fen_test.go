package features

import (
	"testing"
)

func TestNormalizeFEN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "starting position",
			input: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		},
		{
			name:  "en passant without capturer dropped",
			input: afterE4,
			want:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -",
		},
		{
			name:  "en passant capturable by black",
			input: "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
			want:  "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
		},
		{
			name:  "en passant capturable by white",
			input: "rnbqkbnr/pppp1ppp/8/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6 0 3",
			want:  "rnbqkbnr/pppp1ppp/8/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6",
		},
		{
			name:  "en passant on the a file",
			input: "rnbqkbnr/1ppppppp/8/pP6/8/8/P1PPPPPP/RNBQKBNR w KQkq a6 0 3",
			want:  "rnbqkbnr/1ppppppp/8/pP6/8/8/P1PPPPPP/RNBQKBNR w KQkq a6",
		},
		{
			name:  "adjacent pawn of the wrong color",
			input: "rnbqkbnr/pppppppp/8/8/3PP3/8/PPP2PPP/RNBQKBNR b KQkq e3 0 2",
			want:  "rnbqkbnr/pppppppp/8/8/3PP3/8/PPP2PPP/RNBQKBNR b KQkq -",
		},
		{
			name:  "en passant square on the wrong rank",
			input: "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e6 0 3",
			want:  "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq -",
		},
		{
			name:  "clocks dropped",
			input: "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 10 20",
			want:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - -",
		},
		{name: "empty", input: "", wantErr: true},
		{name: "too few fields", input: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w", wantErr: true},
		{name: "bad side", input: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", wantErr: true},
		{name: "seven ranks", input: "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", wantErr: true},
		{name: "short rank", input: "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", wantErr: true},
		{name: "bad letter", input: "rnbxkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFEN(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeFEN() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NormalizeFEN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSideToMove(t *testing.T) {
	tests := []struct {
		input   string
		want    Color
		wantErr bool
	}{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", White, false},
		{afterE4, Black, false},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", NoColor, true},
	}

	for _, tt := range tests {
		got, err := SideToMove(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("SideToMove(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SideToMove(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPieceLetters(t *testing.T) {
	for _, c := range Colors {
		for _, pt := range PieceTypes {
			p := Piece{Type: pt, Color: c}
			got, ok := PieceFromLetter(p.Letter())
			if !ok || got != p {
				t.Errorf("PieceFromLetter(%q) = %v, %v; want %v", p.Letter(), got, ok, p)
			}
		}
	}
	if _, ok := PieceFromLetter('x'); ok {
		t.Error("PieceFromLetter('x') ok = true")
	}
	if got := (Piece{Type: Knight, Color: Black}).Symbol(); got != "N" {
		t.Errorf("Symbol() = %q, want N", got)
	}
	if pt, ok := ParsePieceType("bishop"); !ok || pt != Bishop {
		t.Errorf("ParsePieceType(bishop) = %v, %v", pt, ok)
	}
	if pt, ok := ParsePieceType("q"); !ok || pt != Queen {
		t.Errorf("ParsePieceType(q) = %v, %v", pt, ok)
	}
	if _, ok := ParsePieceType("dragon"); ok {
		t.Error("ParsePieceType(dragon) ok = true")
	}
}
