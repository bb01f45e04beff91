package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	EnvPrefix         = "FIGARO"
	DefaultConfigFile = "figaro.yaml"

	defaultDataDir      = "data"
	defaultImportsFile  = "figaro/estat_naio_10_fgti.tsv"
	defaultExportsFile  = "figaro/estat_naio_10_fgte.tsv"
	defaultStorePath    = "figaro.db"
	defaultServerAddr   = ":8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
)

// Config is loaded from an optional YAML file, then FIGARO_* environment
// variables, then defaults for anything still unset.
//
// Leaf fields carry no envconfig tag: a tag makes envconfig fall back to the
// bare name, which would read Store.Path from $PATH.
type Config struct {
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Store   StoreConfig   `yaml:"store" envconfig:"STORE"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

type DataConfig struct {
	Dir         string `yaml:"dir"`
	ImportsFile string `yaml:"imports_file" split_words:"true"`
	ExportsFile string `yaml:"exports_file" split_words:"true"`
}

type StoreConfig struct {
	// Path of the sqlite database. "-" disables persistence.
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the file named by FIGARO_CONFIG (or figaro.yaml) when present.
func Load() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG"))
	if path == "" {
		path = DefaultConfigFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = defaultDataDir
	}
	if c.Data.ImportsFile == "" {
		c.Data.ImportsFile = defaultImportsFile
	}
	if c.Data.ExportsFile == "" {
		c.Data.ExportsFile = defaultExportsFile
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultWriteTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %s", c.Logging.Format)
	}
	if strings.TrimSpace(c.Data.ImportsFile) == "" || strings.TrimSpace(c.Data.ExportsFile) == "" {
		return errors.New("data imports and exports files are required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

// ImportsPath resolves the imports file against the data directory.
func (d DataConfig) ImportsPath() string {
	return d.resolve(d.ImportsFile)
}

func (d DataConfig) ExportsPath() string {
	return d.resolve(d.ExportsFile)
}

func (d DataConfig) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(d.Dir, file)
}

// PersistenceEnabled reports whether flow sets should be written to sqlite.
func (s StoreConfig) PersistenceEnabled() bool {
	return strings.TrimSpace(s.Path) != "-"
}
