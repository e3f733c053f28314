package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/ods2sql"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.StringP("format", "f", "", "")
	flags.StringP("output", "o", "", "")
	flags.String("column-naming", "", "")
	flags.String("quote-style", "", "")
	flags.Bool("row-groups", false, "")
	flags.String("compression", "", "")
	flags.String("postgres-url", "", "")
	flags.String("log-level", "", "")
	flags.String("log-format", "", "")
	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ods2sql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, FormatSQL, cfg.Format)
	assert.Equal(t, "legacy", cfg.ColumnNaming)
	assert.Equal(t, "backslash", cfg.QuoteStyle)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.File)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, ods2sql.NewOptions(), opts)
}

func TestLoad_FindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ods2sql.yml"), []byte("column_naming: spreadsheet\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "ods2sql.yml", cfg.File)
	assert.Equal(t, "spreadsheet", cfg.ColumnNaming)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
format: sql
output: dump.sql
quote_style: standard
row_groups: true
compression: gz
log_format: json
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, ods2sql.QuoteStyleStandard, opts.QuoteStyle)
	assert.True(t, opts.RowGroups)
	assert.Equal(t, ods2sql.CompressionGZ, opts.Compression)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvPrecedenceOverFile(t *testing.T) {
	path := writeConfig(t, "column_naming: legacy\n")
	t.Setenv("ODS2SQL_COLUMN_NAMING", "spreadsheet")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet", cfg.ColumnNaming)
}

func TestLoad_FlagPrecedence(t *testing.T) {
	path := writeConfig(t, "format: sql\n")
	t.Setenv("ODS2SQL_FORMAT", "parquet")

	flags := newFlags(t)
	require.NoError(t, flags.Parse([]string{"--format", "sqlite", "-o", "out.db", "--quote-style", "standard"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, cfg.Format)
	assert.Equal(t, "out.db", cfg.Output)
	assert.Equal(t, "standard", cfg.QuoteStyle)
}

func TestLoad_FlagNotSetUsesEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ODS2SQL_LOG_LEVEL", "debug")

	flags := newFlags(t)
	require.NoError(t, flags.Parse([]string{"--row-groups"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.RowGroups)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "sql to stdout", cfg: Config{Format: FormatSQL}},
		{name: "sqlite needs output", cfg: Config{Format: FormatSQLite}, wantErr: "output is required"},
		{name: "parquet with output", cfg: Config{Format: FormatParquet, Output: "out"}},
		{name: "postgres needs url", cfg: Config{Format: FormatPostgres}, wantErr: "postgres_url is required"},
		{name: "unknown format", cfg: Config{Format: "csv"}, wantErr: "unknown format"},
		{name: "unknown naming", cfg: Config{Format: FormatSQL, ColumnNaming: "roman"}, wantErr: "unknown column naming"},
		{name: "unknown quote style", cfg: Config{Format: FormatSQL, QuoteStyle: "double"}, wantErr: "unknown quote style"},
		{name: "compression to stdout", cfg: Config{Format: FormatSQL, Compression: "gz"}, wantErr: "compression requires"},
		{name: "compression to file", cfg: Config{Format: FormatSQL, Output: "out.sql", Compression: "zstd"}},
		{name: "bzip2 output", cfg: Config{Format: FormatSQL, Output: "out.sql", Compression: "bz2"}, wantErr: "bzip2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
