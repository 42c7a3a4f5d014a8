// Package main provides the pgn2data CLI for converting PGN chess games into
// CSV tables of game metadata and per-move board features.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
