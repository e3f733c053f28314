package ods2sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nao1215/ods2sql/domain/model"
)

// Converter collects spreadsheet inputs and converts them to SQL text, an
// SQLite database, Parquet files or a PostgreSQL database.
// Use NewConverter to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	converter, err := ods2sql.NewConverter().
//		AddPath("budget.ods").
//		AddFS(embeddedFS).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	if err := converter.WriteSQL(ctx, os.Stdout); err != nil {
//		return err
//	}
type Converter struct {
	// paths contains regular file and directory paths
	paths []string
	// readers contains stream inputs
	readers []readerInput
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// collectedPaths contains all file paths after Build validation
	collectedPaths []string
	// collectedReaders contains all stream inputs after Build validation
	collectedReaders []readerInput
	options          Options
	logger           *slog.Logger
	processor        *fileProcessor
	built            bool
}

// NewConverter creates a new converter with default options and a discarding logger.
//
// Example:
//
//	converter := ods2sql.NewConverter()
//	converter.AddPath("people.ods")
//	converter.AddPath("exports/")
//	converter, err := converter.Build(ctx)
func NewConverter() *Converter {
	return &Converter{
		paths:       make([]string, 0),
		readers:     make([]readerInput, 0),
		filesystems: make([]fs.FS, 0),
		options:     NewOptions(),
		logger:      slog.New(slog.DiscardHandler),
		processor:   newFileProcessor(),
	}
}

// AddPath adds a regular file or directory path to the converter.
// The path can be:
// - A single file with a supported extension (.ods, .fods, .xlsx, and their compressed variants)
// - A directory path (all supported files will be loaded recursively)
//
// Returns the converter for method chaining.
func (c *Converter) AddPath(path string) *Converter {
	c.paths = append(c.paths, path)
	return c
}

// AddPaths adds multiple file or directory paths to the converter.
// Each path follows the same rules as AddPath.
func (c *Converter) AddPaths(paths ...string) *Converter {
	c.paths = append(c.paths, paths...)
	return c
}

// AddReader adds a spreadsheet stream. The name identifies the input in
// errors and logs; a compression extension in the name (e.g. "book.ods.gz")
// makes the stream be decompressed first.
//
// A reader is consumed by the first Parse call.
func (c *Converter) AddReader(reader io.Reader, name string, fileType FileType) *Converter {
	c.readers = append(c.readers, readerInput{
		reader:      reader,
		name:        name,
		fileType:    fileType,
		compression: model.DetectCompressionType(name),
	})
	return c
}

// AddFS adds all supported files from an fs.FS filesystem to the converter.
// This method is particularly useful for embedded filesystems using go:embed.
//
// Example with embedded filesystem:
//
//	//go:embed sheets/*.ods
//	var sheetFS embed.FS
//
//	subFS, _ := fs.Sub(sheetFS, "sheets")
//	converter := ods2sql.NewConverter().AddFS(subFS)
func (c *Converter) AddFS(filesystem fs.FS) *Converter {
	c.filesystems = append(c.filesystems, filesystem)
	return c
}

// WithOptions sets the parse and render options.
func (c *Converter) WithOptions(options Options) *Converter {
	c.options = options
	return c
}

// WithLogger sets the logger receiving per-input progress. A nil logger discards.
func (c *Converter) WithLogger(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c.logger = logger
	return c
}

// Build validates all configured inputs. It must be called before any
// conversion method.
//
// It checks the existence and format of all paths, expands directories and
// opens the supported files of every filesystem.
func (c *Converter) Build(ctx context.Context) (*Converter, error) {
	if len(c.paths) == 0 && len(c.readers) == 0 && len(c.filesystems) == 0 {
		return nil, errors.New("at least one path, reader or filesystem must be provided")
	}

	collectedPaths, err := c.processor.collectFilesFromPaths(c.paths)
	if err != nil {
		return nil, err
	}

	readers := make([]readerInput, 0, len(c.readers))
	for _, input := range c.readers {
		if err := c.processor.validator.validateReader(input); err != nil {
			return nil, err
		}
		readers = append(readers, input)
	}

	fsReaders, err := c.processor.processFilesystemsToReaders(ctx, c.filesystems)
	if err != nil {
		return nil, err
	}
	readers = append(readers, fsReaders...)

	if err := c.processor.validator.validateFinalState(collectedPaths, readers, c.paths); err != nil {
		return nil, err
	}

	c.collectedPaths = collectedPaths
	c.collectedReaders = readers
	c.built = true
	return c, nil
}

// Parse parses every input into a document, paths first and then streams in
// the order they were added.
//
// Table names must be unique across all documents.
func (c *Converter) Parse(ctx context.Context) ([]*Document, error) {
	if !c.built {
		return nil, ErrNotBuilt
	}

	docs := make([]*Document, 0, len(c.collectedPaths)+len(c.collectedReaders))
	for _, path := range c.collectedPaths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrContextCancelled, err)
		}
		file := model.NewFile(path)
		root, err := file.Parse(ctx, c.options.treeOptions())
		if err != nil {
			return nil, c.parseError(path, err)
		}
		docs = append(docs, c.newDocument(path, file.Type(), root))
	}

	for _, input := range c.collectedReaders {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrContextCancelled, err)
		}
		root, err := c.parseReader(ctx, input)
		if err != nil {
			return nil, c.parseError(input.name, err)
		}
		docs = append(docs, c.newDocument(input.name, input.fileType, root))
	}

	if err := checkTableNames(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Converter) parseReader(ctx context.Context, input readerInput) (*Node, error) {
	if closer, ok := input.reader.(io.Closer); ok {
		defer closer.Close()
	}
	reader, cleanup, err := NewDecompressReader(input.reader, input.compression)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cleanup() }()

	return model.Parse(ctx, reader, input.fileType, c.options.treeOptions())
}

func (c *Converter) parseError(source string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrContextCancelled, err)
	}
	return NewErrorContext("parse", source).Error(err)
}

func (c *Converter) newDocument(source string, fileType FileType, root *Node) *Document {
	doc := &Document{Source: source, FileType: fileType, Root: root}
	for _, table := range doc.Tables() {
		c.logger.Debug("table parsed",
			slog.String("source", source),
			slog.String("table", table.Name()),
			slog.Int("rows", len(table.Rows())),
			slog.Int("columns", table.ColumnCount()),
		)
	}
	c.logger.Info("document parsed",
		slog.String("source", source),
		slog.String("type", fileType.String()),
		slog.Int("tables", len(doc.Tables())),
	)
	return doc
}

// checkTableNames rejects two tables with the same name
func checkTableNames(docs []*Document) error {
	seen := make(map[string]string)
	for _, doc := range docs {
		for _, table := range doc.Tables() {
			if prev, ok := seen[table.Name()]; ok {
				return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateTableName, table.Name(), prev, doc.Source)
			}
			seen[table.Name()] = doc.Source
		}
	}
	return nil
}

// WriteSQL parses all inputs and writes their SQL rendering to w.
// Nothing is written when any input fails to parse.
func (c *Converter) WriteSQL(ctx context.Context, w io.Writer) error {
	docs, err := c.Parse(ctx)
	if err != nil {
		return err
	}
	return RenderSQL(w, docs, c.options)
}

// WriteSQLFile parses all inputs and writes their SQL rendering to path,
// compressed as configured by Options.Compression. It returns the written
// path, which gets the compression extension appended when missing.
func (c *Converter) WriteSQLFile(ctx context.Context, path string) (string, error) {
	docs, err := c.Parse(ctx)
	if err != nil {
		return "", err
	}

	path = sqlFilePath(path, c.options.Compression)
	render := func(w io.Writer) error {
		return RenderSQL(w, docs, c.options)
	}
	if err := writeSQLFile(path, c.options.Compression, render); err != nil {
		return "", NewErrorContext("write", path).Error(err)
	}
	c.logger.Info("sql written", slog.String("path", path))
	return path, nil
}

// LoadSQLite parses all inputs and creates their tables in db.
func (c *Converter) LoadSQLite(ctx context.Context, db *sql.DB) error {
	docs, err := c.Parse(ctx)
	if err != nil {
		return err
	}
	return LoadSQLite(ctx, db, docs, c.options)
}

// DumpParquet parses all inputs and writes one Parquet file per table into dir.
// It returns the written file paths.
func (c *Converter) DumpParquet(ctx context.Context, dir string) ([]string, error) {
	docs, err := c.Parse(ctx)
	if err != nil {
		return nil, err
	}
	paths, err := DumpParquet(ctx, dir, docs, c.options)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		c.logger.Info("parquet written", slog.String("path", p))
	}
	return paths, nil
}

// LoadPostgres parses all inputs and loads their tables into PostgreSQL in a
// single transaction.
func (c *Converter) LoadPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	docs, err := c.Parse(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := LoadPostgres(ctx, tx, docs, c.options); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
