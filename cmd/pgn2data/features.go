package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/pgn2data/internal/features"
)

var featuresCmd = &cobra.Command{
	Use:   "features [FEN]",
	Short: "Print the material features of a position",
	Long: `Print the features written to the moves table for a position: piece
counts, captured material and the per-rank counts and values.

Only the piece placement field of the FEN is used.

Examples:
  pgn2data features "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
  pgn2data features --json "8/8/8/4k3/8/8/4K3/4R3"`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

var featuresJSON bool

func init() {
	featuresCmd.Flags().BoolVar(&featuresJSON, "json", false, "output features as JSON")
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	p := features.NewPlacement(args[0])
	if !p.Valid() {
		return fmt.Errorf("%w: %q", features.ErrInvalidFEN, args[0])
	}
	st := features.NewEngine(log).Stats(p, nil)
	out := cmd.OutOrStdout()

	if featuresJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(featureDoc(st))
	}

	fmt.Fprintf(out, "Placement: %s\n", st.Placement)
	fmt.Fprintf(out, "Pieces:    white %d, black %d\n", st.WhiteTotal, st.BlackTotal)
	for _, t := range features.PieceTypes {
		fmt.Fprintf(out, "  %-7s  white %d, black %d\n", t, st.Count(t, features.White), st.Count(t, features.Black))
	}
	fmt.Fprintf(out, "Captured:  white %d, black %d\n", st.Captured[features.White], st.Captured[features.Black])
	fmt.Fprintln(out, "Rows:      white count/value, black count/value")
	for i, r := range st.Ranks {
		fmt.Fprintf(out, "  row %d    %d/%d, %d/%d\n", i+1, r.WhiteCount, r.WhiteValue, r.BlackCount, r.BlackValue)
	}
	return nil
}

type rankDoc struct {
	WhiteCount int `json:"white_count"`
	WhiteValue int `json:"white_value"`
	BlackCount int `json:"black_count"`
	BlackValue int `json:"black_value"`
}

type featuresDoc struct {
	Placement     string                    `json:"placement"`
	WhiteCount    int                       `json:"white_count"`
	BlackCount    int                       `json:"black_count"`
	Pieces        map[string]map[string]int `json:"pieces"`
	CapturedWhite int                       `json:"captured_score_for_white"`
	CapturedBlack int                       `json:"captured_score_for_black"`
	Rows          []rankDoc                 `json:"rows"`
}

func featureDoc(st features.Stats) featuresDoc {
	doc := featuresDoc{
		Placement:     string(st.Placement),
		WhiteCount:    st.WhiteTotal,
		BlackCount:    st.BlackTotal,
		Pieces:        map[string]map[string]int{"white": {}, "black": {}},
		CapturedWhite: st.Captured[features.White],
		CapturedBlack: st.Captured[features.Black],
	}
	for _, t := range features.PieceTypes {
		doc.Pieces["white"][t.String()] = st.Count(t, features.White)
		doc.Pieces["black"][t.String()] = st.Count(t, features.Black)
	}
	for _, r := range st.Ranks {
		doc.Rows = append(doc.Rows, rankDoc(r))
	}
	return doc
}
