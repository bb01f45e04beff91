package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"figaroflows/internal/config"
	"figaroflows/internal/flows"
	"figaroflows/internal/logging"
	"figaroflows/internal/model"
	"figaroflows/internal/providers/figaro"
	"figaroflows/internal/store"
	"figaroflows/internal/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	case "years":
		years(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	cfg, logger := setup()

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	year := fs.Int("year", 0, "year to extract (0 = latest available)")
	imports := fs.String("imports", cfg.Data.ImportsPath(), "path to the FIGARO imports TSV")
	exports := fs.String("exports", cfg.Data.ExportsPath(), "path to the FIGARO exports TSV")
	dbPath := fs.String("db", cfg.Store.Path, "sqlite database path (empty disables persistence)")
	minValue := fs.String("min-value", "", "drop records below this value (empty = keep all)")
	verbose := fs.Bool("verbose", false, "print each record")
	fs.Parse(args)

	opts, err := parseOptions(*minValue)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := runCollector(logger, *imports, *exports, *dbPath, *year, opts, *verbose); err != nil {
		logger.Error("collector run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func years(args []string) {
	cfg, logger := setup()

	fs := flag.NewFlagSet("years", flag.ExitOnError)
	imports := fs.String("imports", cfg.Data.ImportsPath(), "path to the FIGARO imports TSV")
	exports := fs.String("exports", cfg.Data.ExportsPath(), "path to the FIGARO exports TSV")
	fs.Parse(args)

	provider, err := figaro.New(figaro.Config{ImportsPath: *imports, ExportsPath: *exports}, logger)
	if err != nil {
		logger.Error("collector years failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	available, err := provider.AvailableYears(context.Background())
	if err != nil {
		logger.Error("collector years failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, year := range available {
		fmt.Println(year)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: collector <run|years> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "run options:")
	fmt.Fprintln(os.Stderr, "  -year       year to extract (default: 0 = latest available)")
	fmt.Fprintln(os.Stderr, "  -imports    imports TSV (default: data/figaro/estat_naio_10_fgti.tsv)")
	fmt.Fprintln(os.Stderr, "  -exports    exports TSV (default: data/figaro/estat_naio_10_fgte.tsv)")
	fmt.Fprintln(os.Stderr, "  -db         sqlite database path (default: figaro.db, empty disables persistence)")
	fmt.Fprintln(os.Stderr, "  -min-value  drop records below this value")
	fmt.Fprintln(os.Stderr, "  -verbose    print each record")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "years options:")
	fmt.Fprintln(os.Stderr, "  -imports, -exports as above")
}

func setup() (*config.Config, *slog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	return cfg, logging.New(cfg.Logging, os.Stderr).With(slog.String("component", "collector"))
}

func runCollector(logger *slog.Logger, importsPath, exportsPath, dbPath string, year int, opts flows.Options, verbose bool) error {
	provider, err := figaro.New(figaro.Config{ImportsPath: importsPath, ExportsPath: exportsPath}, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()

	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if year == 0 {
		year, err = latestYear(ctx, provider)
		if err != nil {
			return err
		}
	}

	records, err := provider.FetchFlows(ctx, year, opts)
	if err != nil {
		return err
	}

	imported, exported := countFlows(records)
	if verbose {
		for _, record := range records {
			fmt.Printf("%s\t%s\t%.2f\n", record.IndustryCode, record.FlowType, record.Value)
		}
	}

	run := model.Run{ID: uuid.NewString(), Provider: provider.Name(), Year: year}
	if err := st.ReplaceFlows(ctx, run, records); err != nil {
		return fmt.Errorf("store flows: %w", err)
	}
	logger.Info("flows stored",
		slog.String("run_id", run.ID),
		slog.Int("year", year),
		slog.Int("records", len(records)),
	)

	fmt.Printf("collector run complete (provider=%s year=%d records=%d imports=%d exports=%d)\n",
		provider.Name(), year, len(records), imported, exported,
	)
	return nil
}

func latestYear(ctx context.Context, provider *figaro.Provider) (int, error) {
	available, err := provider.AvailableYears(ctx)
	if err != nil {
		return 0, err
	}
	if len(available) == 0 {
		return 0, errors.New("no year columns in imports file")
	}
	return available[len(available)-1], nil
}

func countFlows(records []model.FlowRecord) (int, int) {
	imported := 0
	exported := 0
	for _, record := range records {
		switch record.FlowType {
		case model.FlowImports:
			imported++
		case model.FlowExports:
			exported++
		}
	}
	return imported, exported
}

func parseOptions(minValue string) (flows.Options, error) {
	var opts flows.Options
	minValue = strings.TrimSpace(minValue)
	if minValue == "" {
		return opts, nil
	}
	value, err := strconv.ParseFloat(minValue, 64)
	if err != nil {
		return opts, fmt.Errorf("invalid -min-value: %s", minValue)
	}
	opts.MinValue = &value
	return opts, nil
}

func openStore(path string) (store.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}
