package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/evaldb"
)

var evaldbCmd = &cobra.Command{
	Use:   "evaldb",
	Short: "Build and query evaluation databases",
	Long: `An evaluation database holds precomputed engine evaluations in the
Lichess evaluation export format, split into sorted compressed shards.
Pass its location to 'pgn2data export --evaldb' to score moves without
running an engine.`,
}

var evaldbBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an evaluation database from Lichess JSONL",
	Long: `Build an evaluation database from a local copy of the Lichess
evaluation export (https://database.lichess.org/lichess_db_eval.jsonl.zst)
or an extract of it.

Records are held in memory until every shard is written.

Examples:
  # Build into a local directory
  pgn2data evaldb build --source ./evals.jsonl.zst --output ./evaldb

  # Build straight into GCS with fewer shards
  pgn2data evaldb build --source ./evals.jsonl --output gs://my-bucket/evaldb --shards 4096`,
	Args: cobra.NoArgs,
	RunE: runEvalDBBuild,
}

var evaldbLookupCmd = &cobra.Command{
	Use:   "lookup [FEN]",
	Short: "Look up the evaluation of a position",
	Long: `Look up a position in an evaluation database. The score is from
White's point of view.

Examples:
  pgn2data evaldb lookup --db ./evaldb "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -"`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalDBLookup,
}

var (
	buildSource   string
	buildOutput   string
	buildShards   int
	buildStrategy string
	buildWorkers  int
	buildCodec    string

	lookupDB     string
	lookupJSON   bool
	lookupTiming bool
)

func init() {
	evaldbBuildCmd.Flags().StringVar(&buildSource, "source", "", "Lichess evaluation JSONL (.zst and .gz are decompressed)")
	evaldbBuildCmd.Flags().StringVarP(&buildOutput, "output", "o", "./evaldb", "database location (directory, gs:// or s3://)")
	evaldbBuildCmd.Flags().IntVar(&buildShards, "shards", evaldb.DefaultTotalShards, "number of shards")
	evaldbBuildCmd.Flags().StringVar(&buildStrategy, "strategy", "material", "sharding strategy: material, fnv32")
	evaldbBuildCmd.Flags().IntVar(&buildWorkers, "workers", 4, "shards compressed and uploaded in parallel")
	evaldbBuildCmd.Flags().StringVar(&buildCodec, "compress", "zstd", fmt.Sprintf("shard compression: %v", codec.Names()))
	evaldbBuildCmd.MarkFlagRequired("source")

	evaldbLookupCmd.Flags().StringVar(&lookupDB, "db", "./evaldb", "database location (directory, gs:// or s3://)")
	evaldbLookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output result as JSON")
	evaldbLookupCmd.Flags().BoolVar(&lookupTiming, "timing", false, "show lookup timing")

	evaldbCmd.AddCommand(evaldbBuildCmd, evaldbLookupCmd)
	rootCmd.AddCommand(evaldbCmd)
}

func runEvalDBBuild(cmd *cobra.Command, args []string) error {
	strategy, err := evaldb.StrategyByName(buildStrategy)
	if err != nil {
		return err
	}
	c, err := codec.ForName(buildCodec)
	if err != nil {
		return err
	}
	if _, err := os.Stat(buildSource); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, buildOutput)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer bucket.Close()

	b := evaldb.NewBuilder(bucket,
		evaldb.BuildWithCodec(c),
		evaldb.BuildWithStrategy(strategy),
		evaldb.BuildWithTotalShards(buildShards),
		evaldb.BuildWithWorkers(buildWorkers),
		evaldb.BuildWithLogger(log),
	)
	m, st, err := b.BuildFile(ctx, buildSource)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %s\n", bucket.URL())
	fmt.Fprintf(out, "  Records:  %d (%d skipped)\n", m.RecordCount, st.RecordsSkipped)
	fmt.Fprintf(out, "  Shards:   %d of %d (%s, %s)\n", m.ShardCount, m.TotalShards, m.Strategy, m.Compression)
	fmt.Fprintf(out, "  Duration: %s\n", st.Elapsed.Round(time.Millisecond))
	return nil
}

func runEvalDBLookup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db, err := evaldb.Open(ctx, lookupDB,
		evaldb.WithStats(collector),
		evaldb.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	start := time.Now()
	eval, err := db.Lookup(ctx, args[0])
	if err != nil {
		if errors.Is(err, evaldb.ErrNotFound) {
			return fmt.Errorf("position not found in database")
		}
		return fmt.Errorf("lookup failed: %w", err)
	}
	elapsed := time.Since(start)
	log.Debug("lookup", zap.String("fen", eval.FEN), zap.Duration("elapsed", elapsed))

	out := cmd.OutOrStdout()
	if lookupJSON {
		doc := struct {
			FEN       string `json:"fen"`
			Depth     int    `json:"depth"`
			CP        *int   `json:"cp,omitempty"`
			Mate      *int   `json:"mate,omitempty"`
			ElapsedMS *int64 `json:"elapsed_ms,omitempty"`
		}{FEN: eval.FEN, Depth: eval.Depth, CP: eval.Centipawns, Mate: eval.Mate}
		if lookupTiming {
			ms := elapsed.Milliseconds()
			doc.ElapsedMS = &ms
		}
		return json.NewEncoder(out).Encode(doc)
	}

	fmt.Fprintf(out, "FEN:   %s\n", eval.FEN)
	fmt.Fprintf(out, "Score: %s\n", scoreText(eval))
	fmt.Fprintf(out, "Depth: %d\n", eval.Depth)
	if lookupTiming {
		fmt.Fprintf(out, "Time:  %s\n", elapsed)
	}
	return nil
}

func scoreText(e *evaldb.Eval) string {
	switch {
	case e.Mate != nil:
		return fmt.Sprintf("#%d", *e.Mate)
	case e.Centipawns != nil:
		return fmt.Sprintf("%+.2f", float64(*e.Centipawns)/100)
	}
	return "none"
}
