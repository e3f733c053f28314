// Package config loads the ods2sql command line configuration.
//
// Values are layered, highest precedence first: command line flags,
// ODS2SQL_* environment variables, the ods2sql.yaml file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/nao1215/ods2sql"
	"github.com/spf13/pflag"
)

// Output formats
const (
	FormatSQL      = "sql"
	FormatSQLite   = "sqlite"
	FormatParquet  = "parquet"
	FormatPostgres = "postgres"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "ODS2SQL_"

// Default values
const (
	DefaultFormat    = FormatSQL
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds all command line options.
type Config struct {
	Format       string `koanf:"format"`
	Output       string `koanf:"output"`
	ColumnNaming string `koanf:"column_naming"`
	QuoteStyle   string `koanf:"quote_style"`
	RowGroups    bool   `koanf:"row_groups"`
	Compression  string `koanf:"compression"`
	PostgresURL  string `koanf:"postgres_url"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`

	// File is the configuration file that was read, empty when none was found
	File string `koanf:"-"`
}

// findConfigFile finds the config file to use.
// Priority: explicit path > ods2sql.yaml > ods2sql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"ods2sql.yaml", "ods2sql.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, environment variables and flags.
// Only flags that were explicitly set override the other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":        DefaultFormat,
		"column_naming": ods2sql.ColumnNamingLegacy.String(),
		"quote_style":   ods2sql.QuoteStyleBackslash.String(),
		"row_groups":    false,
		"compression":   ods2sql.CompressionNone.String(),
		"log_level":     DefaultLogLevel,
		"log_format":    DefaultLogFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: ODS2SQL_COLUMN_NAMING -> column_naming
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Format = strings.ToLower(cfg.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Format {
	case FormatSQL:
	case FormatSQLite, FormatParquet:
		if c.Output == "" {
			errs = append(errs, fmt.Errorf("output is required for format %s", c.Format))
		}
	case FormatPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("postgres_url is required for format postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (want sql, sqlite, parquet or postgres)", c.Format))
	}

	if _, err := c.Options(); err != nil {
		errs = append(errs, err)
	}
	if c.Compression != "" && !strings.EqualFold(c.Compression, ods2sql.CompressionNone.String()) {
		if c.Format != FormatSQL || c.Output == "" {
			errs = append(errs, errors.New("compression requires format sql with an output file"))
		}
	}

	return errors.Join(errs...)
}

// Options converts the configuration into conversion options.
func (c *Config) Options() (ods2sql.Options, error) {
	naming, err := ods2sql.ParseColumnNaming(c.ColumnNaming)
	if err != nil {
		return ods2sql.Options{}, err
	}
	style, err := ods2sql.ParseQuoteStyle(c.QuoteStyle)
	if err != nil {
		return ods2sql.Options{}, err
	}
	compression, err := ods2sql.ParseCompressionType(c.Compression)
	if err != nil {
		return ods2sql.Options{}, err
	}
	if compression == ods2sql.CompressionBZ2 {
		return ods2sql.Options{}, errors.New("bzip2 output is not supported")
	}

	return ods2sql.NewOptions().
		WithColumnNaming(naming).
		WithQuoteStyle(style).
		WithRowGroups(c.RowGroups).
		WithCompression(compression), nil
}
