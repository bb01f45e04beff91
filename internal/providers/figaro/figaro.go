package figaro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"figaroflows/internal/config"
	"figaroflows/internal/flows"
	"figaroflows/internal/model"
	"figaroflows/internal/providers"
)

const ProviderName = "figaro"

var ErrDatasetMissing = errors.New("figaro: dataset file not found")

type Config struct {
	ImportsPath string
	ExportsPath string
}

func ConfigFromData(data config.DataConfig) Config {
	return Config{
		ImportsPath: data.ImportsPath(),
		ExportsPath: data.ExportsPath(),
	}
}

type Provider struct {
	config Config
	logger *slog.Logger
}

// New checks that both dataset files exist. The files are read again on
// every fetch; nothing is cached between calls.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.ImportsPath) == "" || strings.TrimSpace(cfg.ExportsPath) == "" {
		return nil, errors.New("figaro: imports and exports paths are required")
	}
	for _, path := range []string{cfg.ImportsPath, cfg.ExportsPath} {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s (make sure the FIGARO dataset files are downloaded)", ErrDatasetMissing, path)
			}
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("figaro: %s is a directory", path)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		config: cfg,
		logger: logger.With(slog.String("provider", ProviderName)),
	}, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Config() Config {
	return p.config
}

// AvailableYears lists the integer year columns of the imports file.
func (p *Provider) AvailableYears(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := p.decode(ctx, p.config.ImportsPath)
	if err != nil {
		return nil, err
	}
	return table.Years(), nil
}

func (p *Provider) FetchFlows(ctx context.Context, year int, opts flows.Options) ([]model.FlowRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	imports, err := p.decode(ctx, p.config.ImportsPath)
	if err != nil {
		return nil, err
	}
	exports, err := p.decode(ctx, p.config.ExportsPath)
	if err != nil {
		return nil, err
	}

	records, err := flows.ExtractWithOptions(imports, exports, year, opts)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "extracted flows",
		slog.Int("year", year),
		slog.Int("records", len(records)),
	)
	return records, nil
}

func (p *Provider) decode(ctx context.Context, path string) (*flows.Table, error) {
	started := time.Now()
	table, err := flows.Decode(path)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "decoded table",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("year_columns", len(table.YearLabels())),
		slog.Duration("elapsed", time.Since(started)),
	)
	return table, nil
}

var _ providers.Provider = (*Provider)(nil)
