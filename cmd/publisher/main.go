package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"figaroflows/internal/config"
	"figaroflows/internal/logging"
	"figaroflows/internal/model"
	"figaroflows/internal/providers/figaro"
	"figaroflows/internal/sankey"
	"figaroflows/internal/store/sqlite"
)

type metaFile struct {
	GeneratedAt string `json:"generated_at"`
	Provider    string `json:"provider"`
	Years       []int  `json:"years"`
}

type flowsFile struct {
	GeneratedAt string             `json:"generated_at"`
	Year        int                `json:"year"`
	Records     []model.FlowRecord `json:"records"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		build(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func build(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, os.Stderr).With(slog.String("component", "publisher"))

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outDir := fs.String("out", "site/data", "output directory")
	dbPath := fs.String("db", cfg.Store.Path, "sqlite database path")
	provider := fs.String("provider", figaro.ProviderName, "provider id")
	year := fs.Int("year", 0, "year to publish (0 = every stored year)")
	fs.Parse(args)

	written, err := publish(context.Background(), *dbPath, *outDir, *provider, *year, time.Now().UTC())
	if err != nil {
		logger.Error("publisher build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("publisher build complete (out=%s years=%d)\n", *outDir, written)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: publisher build [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -out        output directory (default: site/data)")
	fmt.Fprintln(os.Stderr, "  -db         sqlite database path (default: figaro.db)")
	fmt.Fprintln(os.Stderr, "  -provider   provider id (default: figaro)")
	fmt.Fprintln(os.Stderr, "  -year       year to publish (default: 0 = every stored year)")
}

// publish writes meta.json plus flows-<year>.json and sankey-<year>.json for
// each published year and returns how many years were written.
func publish(ctx context.Context, dbPath, outDir, provider string, year int, now time.Time) (int, error) {
	if strings.TrimSpace(dbPath) == "" || strings.TrimSpace(dbPath) == "-" {
		return 0, errors.New("db path is required")
	}
	st, err := sqlite.New(dbPath)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	stored, err := st.ListYears(ctx, provider)
	if err != nil {
		return 0, err
	}

	years := stored
	if year != 0 {
		if !containsYear(stored, year) {
			return 0, fmt.Errorf("no stored flows for provider %s year %d", provider, year)
		}
		years = []int{year}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	generatedAt := now.Format(time.RFC3339)
	for _, y := range years {
		records, err := st.ListFlows(ctx, provider, y)
		if err != nil {
			return 0, err
		}
		if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("flows-%d.json", y)), flowsFile{
			GeneratedAt: generatedAt,
			Year:        y,
			Records:     records,
		}); err != nil {
			return 0, err
		}
		if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("sankey-%d.json", y)), sankey.Build(y, records)); err != nil {
			return 0, err
		}
	}

	if err := writeJSON(filepath.Join(outDir, "meta.json"), metaFile{
		GeneratedAt: generatedAt,
		Provider:    provider,
		Years:       stored,
	}); err != nil {
		return 0, err
	}
	return len(years), nil
}

func containsYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

func writeJSON(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
