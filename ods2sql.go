package ods2sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
	odsdriver "github.com/nao1215/ods2sql/driver"
)

const (
	// DriverName is the name for the ods2sql database/sql driver
	DriverName = "ods2sql"
)

// Register registers the ods2sql driver with database/sql
func Register() {
	sql.Register(DriverName, odsdriver.NewDriver())
}

func init() {
	Register()
}

// Type aliases for the document model
type (
	// Node is an element of a parsed document tree
	Node = model.Node
	// Kind identifies the node variant
	Kind = model.Kind
	// CellType is the inferred type of a cell or column
	CellType = model.CellType
	// ColumnNaming selects how column indexes are named
	ColumnNaming = model.ColumnNaming
	// FileType represents a supported spreadsheet file type
	FileType = model.FileType
	// CompressionType represents the compression type
	CompressionType = model.CompressionType
	// EventHandler receives markup events
	EventHandler = model.EventHandler
	// TreeBuilder turns markup events into a document tree
	TreeBuilder = model.TreeBuilder
)

// Re-export constants for easier use
const (
	// CellTypeInteger represents a whole number column
	CellTypeInteger = model.CellTypeInteger
	// CellTypeFloat represents a decimal number column
	CellTypeFloat = model.CellTypeFloat
	// CellTypeString represents a text column
	CellTypeString = model.CellTypeString

	// ColumnNamingLegacy names columns A, B, ..., Z, AB, BB (least significant letter first)
	ColumnNamingLegacy = model.ColumnNamingLegacy
	// ColumnNamingSpreadsheet names columns A, B, ..., Z, AA, AB
	ColumnNamingSpreadsheet = model.ColumnNamingSpreadsheet

	// FileTypeODS represents an OpenDocument spreadsheet archive
	FileTypeODS = model.FileTypeODS
	// FileTypeFODS represents a flat OpenDocument spreadsheet
	FileTypeFODS = model.FileTypeFODS
	// FileTypeXLSX represents an Excel XLSX workbook
	FileTypeXLSX = model.FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported = model.FileTypeUnsupported

	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD
)

// Document is one parsed input
type Document struct {
	// Source is the path of the input, or the name given to a reader input
	Source string
	// FileType is the spreadsheet format of the input
	FileType FileType
	// Root is the finished document tree
	Root *Node
}

// Tables returns the tables of the document in document order
func (d *Document) Tables() []*Node {
	if d.Root == nil {
		return nil
	}
	return d.Root.Tables()
}

// Convert reads an uncompressed ODS archive from r and writes its SQL rendering to w.
//
// The whole document is parsed before anything is written, so a malformed
// document leaves w untouched.
//
// Example:
//
//	if err := ods2sql.Convert(ctx, os.Stdin, os.Stdout); err != nil {
//		log.Fatal(err)
//	}
func Convert(ctx context.Context, r io.Reader, w io.Writer, opts ...Options) error {
	options := NewOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	root, err := model.Parse(ctx, r, model.FileTypeODS, options.treeOptions())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errors.Join(ErrContextCancelled, err)
		}
		return NewErrorContext("convert", "").Error(err)
	}
	return RenderSQL(w, []*Document{{Source: "-", FileType: FileTypeODS, Root: root}}, options)
}

// Open opens a database connection using the ods2sql driver.
//
// Every sheet of every input becomes a table of an in-memory SQLite database,
// with an "_id" key column followed by columns A, B, C, ... typed from the
// sheet's content.
//
// Supported file formats:
//   - OpenDocument spreadsheets (.ods, .fods)
//   - Excel workbooks (.xlsx)
//   - Compressed versions of above (.gz, .bz2, .xz, .zst)
//
// Directories are scanned for supported files.
//
// Example usage:
//
//	db, err := ods2sql.Open("people.ods")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query(`SELECT "A", "B" FROM "People" WHERE "_id" > 1`)
func Open(paths ...string) (*sql.DB, error) {
	return OpenContext(context.Background(), paths...)
}

// OpenContext opens a database connection using the ods2sql driver with context support.
func OpenContext(ctx context.Context, paths ...string) (*sql.DB, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one path must be provided")
	}
	v := newValidator()
	for _, path := range paths {
		if err := v.validatePath(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(DriverName, strings.Join(paths, ";"))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return nil, err
	}
	return db, nil
}
