package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/stats/logger"
	promstats "github.com/discochess/pgn2data/internal/stats/prometheus"
)

var (
	// Global flags.
	verbose     bool
	metricsAddr string

	log       = zap.NewNop()
	collector stats.Collector = stats.NewNoop()
	summary   *logger.Collector
)

var rootCmd = &cobra.Command{
	Use:   "pgn2data",
	Short: "Convert PGN chess games into CSV datasets",
	Long: `pgn2data converts PGN files into two CSV tables: one row per game with
its tag pairs and result, and one row per half-move with the material
features of the resulting position.

Moves can be scored by a UCI engine or by a precomputed evaluation
database built from the Lichess evaluation export.

Examples:
  # Export games and moves
  pgn2data export tal_bronstein_1982.pgn

  # Score every move with Stockfish at depth 16
  pgn2data export --engine /usr/bin/stockfish --depth 16 lichess.pgn.zst

  # Show the features of a position
  pgn2data features "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// setup builds the logger and the stats collector shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)

	switch {
	case metricsAddr != "":
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = promstats.New(registry)
		serveMetrics(registry)
	case verbose:
		summary = logger.New(log.Named("stats"))
		collector = summary
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if summary != nil {
		summary.Summarize("run metrics")
	}
	log.Sync()
}

func serveMetrics(registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", metricsAddr))
}
