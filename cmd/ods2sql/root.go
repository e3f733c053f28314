package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nao1215/ods2sql"
	"github.com/nao1215/ods2sql/internal/config"
	"github.com/nao1215/ods2sql/internal/logging"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// Version is set at build time.
var Version = "dev"

// stdinInput names standard input on the command line
const stdinInput = "-"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ods2sql [flags] [input...]",
		Short: "Convert OpenDocument spreadsheets to SQL",
		Long: `ods2sql turns every sheet of a spreadsheet into a CREATE TABLE statement
followed by one INSERT per row. Columns are named A, B, C, ... and typed
INTEGER, DOUBLE or TEXT from their content.

Inputs are .ods, .fods or .xlsx files (optionally compressed) or directories.
With no input, or "-", an ODS archive is read from standard input.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("using config file", slog.String("path", cfg.File))
			}
			return run(cmd.Context(), cmd, cfg, logger, args)
		},
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./ods2sql.yaml)")
	flags.StringP("format", "f", "", "Output format (sql|sqlite|parquet|postgres)")
	flags.StringP("output", "o", "", "Output file, SQLite database or Parquet directory (default: stdout for sql)")
	flags.String("column-naming", "", "Column naming scheme (legacy|spreadsheet)")
	flags.String("quote-style", "", "String literal escaping (backslash|standard)")
	flags.Bool("row-groups", false, "Keep rows nested in header and row groups")
	flags.String("compression", "", "Compression of the SQL output file (none|gz|xz|zstd)")
	flags.String("postgres-url", "", "PostgreSQL connection string for format postgres")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatSQL, config.FormatSQLite, config.FormatParquet, config.FormatPostgres}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("column-naming", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"legacy", "spreadsheet"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ods2sql %s\n", Version)
		},
	}
}

// run converts the inputs to the configured destination.
func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, args []string) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	converter, err := buildConverter(ctx, cmd.InOrStdin(), args, opts, logger)
	if err != nil {
		return err
	}

	switch cfg.Format {
	case config.FormatSQLite:
		return loadSQLite(ctx, converter, cfg.Output)
	case config.FormatParquet:
		paths, err := converter.DumpParquet(ctx, cfg.Output)
		if err != nil {
			return err
		}
		for _, p := range paths {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), p)
		}
		return nil
	case config.FormatPostgres:
		return loadPostgres(ctx, converter, cfg.PostgresURL)
	default:
		if cfg.Output == "" {
			return converter.WriteSQL(ctx, cmd.OutOrStdout())
		}
		_, err := converter.WriteSQLFile(ctx, cfg.Output)
		return err
	}
}

func buildConverter(ctx context.Context, stdin io.Reader, args []string, opts ods2sql.Options, logger *slog.Logger) (*ods2sql.Converter, error) {
	if len(args) == 0 {
		args = []string{stdinInput}
	}

	converter := ods2sql.NewConverter().WithOptions(opts).WithLogger(logger)
	stdinUsed := false
	for _, arg := range args {
		logging.WithInput(logger, arg).Debug("input added")
		if arg != stdinInput {
			converter.AddPath(arg)
			continue
		}
		if stdinUsed {
			return nil, errors.New("standard input can only be read once")
		}
		stdinUsed = true
		converter.AddReader(stdin, "stdin", ods2sql.FileTypeODS)
	}
	return converter.Build(ctx)
}

func loadSQLite(ctx context.Context, converter *ods2sql.Converter, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return converter.LoadSQLite(ctx, db)
}

func loadPostgres(ctx context.Context, converter *ods2sql.Converter, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return converter.LoadPostgres(ctx, pool)
}
