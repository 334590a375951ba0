package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/matst80/slask-intel/pkg/export"
	"github.com/matst80/slask-intel/pkg/facet"
	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/sorting"
	"github.com/matst80/slask-intel/pkg/types"
)

var dataDir = flag.String("data", "data", "folder with threats.json, actors.json and tools.json")
var query = flag.String("query", "", "deep link query, for example severity=Critical&tags=apt")
var out = flag.String("out", "", "write the export document to this file instead of stdout")
var summary = flag.Bool("summary", false, "print a short table instead of the export document")

func run(w io.Writer, now time.Time) error {
	repo := index.NewMemoryRepository()
	if err := repo.LoadFiles(*dataDir); err != nil {
		return err
	}
	state := types.FilterStateFromQuery(*query)
	matching := sorting.SortState(facet.Filter(repo.All(), state, now), state)
	if *summary {
		return writeSummary(w, state, matching)
	}
	return export.Write(w, export.Build(state, matching, now))
}

func writeSummary(w io.Writer, state types.FilterState, records []types.Record) error {
	if _, err := fmt.Fprintf(w, "%d records matching %q\n", len(records), types.EncodeFilterStateQuery(state)); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%-16s %-9s %-12s %s\n", types.FormatDate(r.Date), r.Severity, types.Truncate(r.Source, 12), types.Truncate(r.Title, 60)); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()
	var w io.Writer = os.Stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *out, err)
		}
		defer file.Close()
		w = file
	}
	if err := run(w, time.Now()); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if *out != "" {
		log.Printf("Wrote export to %s", *out)
	}
}
