package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Error policies for the batch driver.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Config holds everything cmd/taqstats needs for a run.
type Config struct {
	DataDir     string   `mapstructure:"data_dir" yaml:"data_dir"`
	Files       []string `mapstructure:"files" yaml:"files,omitempty"`
	ErrorPolicy string   `mapstructure:"error_policy" yaml:"error_policy"`
	TopK        int      `mapstructure:"top_k" yaml:"top_k"`
	RunID       string   `mapstructure:"run_id" yaml:"run_id"`

	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Mongo  MongoConfig  `mapstructure:"mongo" yaml:"mongo"`
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http"`

	// PrintConfig asks the driver to dump the effective config and exit.
	PrintConfig bool `mapstructure:"-" yaml:"-"`
}

// LogConfig defines the logger options.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`             // "debug", "info", "warn", "error"
	Format      string `mapstructure:"format" yaml:"format"`           // "json" or "console"
	OutputFile  string `mapstructure:"output_file" yaml:"output_file"` // optional, rotated
	Environment string `mapstructure:"environment" yaml:"environment"` // "dev" or "prod"
}

type MongoConfig struct {
	URI           string `mapstructure:"uri" yaml:"uri"` // empty disables the sink
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty disables the sink
}

type ExportConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"` // empty disables export
	MaxMB int    `mapstructure:"max_mb" yaml:"max_mb"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // empty disables serving
}

var defaults = map[string]any{
	"data_dir":             "",
	"files":                []string{},
	"error_policy":         PolicyAbort,
	"top_k":                50,
	"run_id":               "",
	"log.level":            "info",
	"log.format":           "console",
	"log.output_file":      "",
	"log.environment":      "prod",
	"mongo.uri":            "",
	"mongo.retention_days": 30,
	"sqlite.path":          "",
	"export.dir":           "",
	"export.max_mb":        256,
	"http.addr":            "",
}

// flag name -> config key
var flagKeys = map[string]string{
	"data-dir":        "data_dir",
	"error-policy":    "error_policy",
	"top":             "top_k",
	"run-id":          "run_id",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-file":        "log.output_file",
	"env":             "log.environment",
	"mongo-uri":       "mongo.uri",
	"mongo-retention": "mongo.retention_days",
	"sqlite":          "sqlite.path",
	"export-dir":      "export.dir",
	"export-max-mb":   "export.max_mb",
	"http":            "http.addr",
}

// Load builds the configuration from, in increasing precedence: defaults,
// an optional YAML file (--config), TAQ_* environment variables, and flags.
// Positional arguments are input files.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("taqstats", pflag.ContinueOnError)
	cfgFile := fs.String("config", "", "YAML config file")
	printCfg := fs.Bool("print-config", false, "print the effective configuration as YAML and exit")
	fs.String("data-dir", "", "directory of TAQ files to process (env TAQ_DATA_DIR or NYSE_TRADE_DATA_DIR)")
	fs.String("error-policy", PolicyAbort, "on a bad line: abort or skip")
	fs.Int("top", 50, "number of symbols in the activity and volume rankings")
	fs.String("run-id", "", "identifier stored with persisted results (default: derived from start time)")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "console", "log format: console or json")
	fs.String("log-file", "", "also log JSON to this file, rotated")
	fs.String("env", "prod", "environment: dev or prod")
	fs.String("mongo-uri", "", "MongoDB URI for run results (empty = disabled)")
	fs.Int("mongo-retention", 30, "days of runs to keep in MongoDB (0 = keep forever)")
	fs.String("sqlite", "", "SQLite database path for run results (empty = disabled)")
	fs.String("export-dir", "", "directory for gzipped NDJSON bucket exports (empty = disabled)")
	fs.Int("export-max-mb", 256, "cap on the export directory size in MB, oldest runs removed first (0 = no cap)")
	fs.String("http", "", "serve results over HTTP on this address after the run (empty = exit)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	v.SetEnvPrefix("TAQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("data_dir", "TAQ_DATA_DIR", "NYSE_TRADE_DATA_DIR"); err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if *cfgFile != "" {
		v.SetConfigFile(*cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		cfg.Files = rest
	}
	cfg.PrintConfig = *printCfg
	return &cfg, nil
}

// Validate rejects settings the run cannot honour.
func (c *Config) Validate() error {
	var errs []error
	switch c.ErrorPolicy {
	case PolicyAbort, PolicySkip:
	default:
		errs = append(errs, fmt.Errorf("error_policy %q: want %s or %s", c.ErrorPolicy, PolicyAbort, PolicySkip))
	}
	if c.TopK < 0 {
		errs = append(errs, fmt.Errorf("top_k %d is negative", c.TopK))
	}
	if c.Mongo.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("mongo.retention_days %d is negative", c.Mongo.RetentionDays))
	}
	if c.Export.MaxMB < 0 {
		errs = append(errs, fmt.Errorf("export.max_mb %d is negative", c.Export.MaxMB))
	}
	if c.DataDir == "" && len(c.Files) == 0 {
		errs = append(errs, errors.New("no input: set data_dir or pass files"))
	}
	return errors.Join(errs...)
}

// WriteYAML writes the effective configuration in the --config file format.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
