package pgn2data

import (
	"fmt"
	"io"
	"os"
	"time"
)

// ResultFile is one output table.
type ResultFile struct {
	Name string
	Size int64
}

// Result reports the outcome of an export.
type Result struct {
	// Complete is true when every input was exported and every output
	// table exists.
	Complete  bool
	GamesFile ResultFile
	// MovesFile is nil when the moves table was not requested.
	MovesFile *ResultFile

	Games   int
	Plies   int
	Skipped int
	Elapsed time.Duration

	// Published lists the URLs the tables were uploaded to.
	Published []string
}

// emptyResult is the result of an export that wrote nothing.
func emptyResult() *Result {
	return &Result{MovesFile: &ResultFile{}}
}

// Summary prints the outcome to w.
func (r *Result) Summary(w io.Writer) {
	fmt.Fprintf(w, "is complete: %t\n", r.Complete)
	fmt.Fprintf(w, "games file: %s | size: %d\n", r.GamesFile.Name, r.GamesFile.Size)
	if r.MovesFile != nil {
		fmt.Fprintf(w, "moves file: %s | size: %d\n", r.MovesFile.Name, r.MovesFile.Size)
	}
	if r.Games > 0 || r.Plies > 0 {
		fmt.Fprintf(w, "games: %d | plies: %d | skipped: %d | elapsed: %s\n",
			r.Games, r.Plies, r.Skipped, r.Elapsed.Round(time.Millisecond))
	}
	for _, url := range r.Published {
		fmt.Fprintf(w, "published: %s\n", url)
	}
}

// statFile returns the table at path and whether it exists.
func statFile(path string) (ResultFile, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ResultFile{Name: path}, false
	}
	return ResultFile{Name: path, Size: info.Size()}, true
}
