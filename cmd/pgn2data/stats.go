package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/pgn2data"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/table"
)

var statsCmd = &cobra.Command{
	Use:   "stats [directory]",
	Short: "List exported tables in a directory",
	Long: `List the games and moves tables in a directory with their size and,
with --rows, their row counts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

var countRows bool

func init() {
	statsCmd.Flags().BoolVar(&countRows, "rows", false, "count data rows (reads every table)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		_, base := codec.ForPath(entry.Name())
		if strings.HasSuffix(base, pgn2data.GamesSuffix) || strings.HasSuffix(base, pgn2data.MovesSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No exported tables found.")
		fmt.Fprintln(out, "Run 'pgn2data export' to create them.")
		return nil
	}

	var total int64
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		total += info.Size()
		line := fmt.Sprintf("%-40s %10s", name, formatBytes(info.Size()))
		if countRows {
			c, _ := codec.ForPath(name)
			header, rows, err := table.Read(path, c)
			if err != nil {
				return err
			}
			line += fmt.Sprintf("  %d rows, %d columns", len(rows), len(header))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Total: %d tables, %s\n", len(names), formatBytes(total))
	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
