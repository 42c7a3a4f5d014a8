package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/discochess/pgn2data"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/evaluator"
)

var exportCmd = &cobra.Command{
	Use:   "export [PGN files...]",
	Short: "Export PGN games to games and moves tables",
	Long: `Export one or more PGN files into <name>_game_info.csv and
<name>_moves.csv. The name defaults to the first file's name without
".pgn". Inputs ending in .zst or .gz are decompressed on the fly.

Examples:
  # Games and moves
  pgn2data export tal_bronstein_1982.pgn

  # Games only, into a named pair of files
  pgn2data export --moves=false --name openings a.pgn b.pgn

  # Evaluate with an engine, compress the output, drop empty columns
  pgn2data export --engine /usr/bin/stockfish --compress zstd --collapse games.pgn

  # Evaluate from a database and upload the result
  pgn2data export --evaldb gs://my-bucket/evals --publish gs://my-bucket/exports games.pgn`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	outputDir     string
	outputName    string
	movesRequired bool
	queueSize     int
	depth         int
	collapse      bool
	compress      string
	enginePath    string
	engineHash    int
	engineThreads int
	evalDB        string
	evalCache     int
	publishTo     string
)

func init() {
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory for the output tables")
	exportCmd.Flags().StringVar(&outputName, "name", "", "base name of the output tables")
	exportCmd.Flags().BoolVar(&movesRequired, "moves", true, "write the moves table")
	exportCmd.Flags().IntVar(&queueSize, "queue-size", 0, "max games waiting for move processing (0 = unbounded)")
	exportCmd.Flags().IntVar(&depth, "depth", evaluator.DefaultDepth, "evaluation search depth")
	exportCmd.Flags().BoolVar(&collapse, "collapse", false, "remove columns that are empty in every row")
	exportCmd.Flags().StringVar(&compress, "compress", "none", fmt.Sprintf("output compression: %v", codec.Names()))
	exportCmd.Flags().StringVar(&enginePath, "engine", "", "UCI engine binary used to evaluate moves")
	exportCmd.Flags().IntVar(&engineHash, "engine-hash", 0, "engine hash size in MB (0 = engine default)")
	exportCmd.Flags().IntVar(&engineThreads, "engine-threads", 0, "engine search threads (0 = engine default)")
	exportCmd.Flags().StringVar(&evalDB, "evaldb", "", "evaluation database location (directory, gs:// or s3://)")
	exportCmd.Flags().IntVar(&evalCache, "eval-cache", 0, "evaluations memoized across inputs (0 = off)")
	exportCmd.Flags().StringVar(&publishTo, "publish", "", "upload the tables to gs://bucket/prefix or s3://bucket/prefix")
	exportCmd.MarkFlagsMutuallyExclusive("engine", "evaldb")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := []pgn2data.Option{
		pgn2data.WithOutputDir(outputDir),
		pgn2data.WithOutputName(outputName),
		pgn2data.WithMoves(movesRequired),
		pgn2data.WithQueueSize(queueSize),
		pgn2data.WithDepth(depth),
		pgn2data.WithCollapse(collapse),
		pgn2data.WithCompression(compress),
		pgn2data.WithEvalCache(evalCache),
		pgn2data.WithPublish(publishTo),
		pgn2data.WithStats(collector),
		pgn2data.WithLogger(log),
	}
	if enginePath != "" {
		opts = append(opts,
			pgn2data.WithEngine(enginePath),
			pgn2data.WithEngineResources(engineHash, engineThreads),
		)
	}
	if evalDB != "" {
		opts = append(opts, pgn2data.WithEvalDB(evalDB))
	}

	result := pgn2data.New(opts...).Export(ctx, args...)
	result.Summary(cmd.OutOrStdout())
	if !result.Complete {
		return fmt.Errorf("export incomplete")
	}
	return nil
}
