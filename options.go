package ods2sql

import (
	"fmt"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
)

// QuoteStyle selects how single quotes inside string literals are escaped
type QuoteStyle int

const (
	// QuoteStyleBackslash escapes ' as \' (MySQL style, the historical ods2sql output)
	QuoteStyleBackslash QuoteStyle = iota
	// QuoteStyleStandard escapes ' as '' (ANSI SQL)
	QuoteStyleStandard
)

// String returns the quote style name
func (q QuoteStyle) String() string {
	switch q {
	case QuoteStyleStandard:
		return "standard"
	default:
		return "backslash"
	}
}

// ParseQuoteStyle parses a quote style name
func ParseQuoteStyle(s string) (QuoteStyle, error) {
	switch strings.ToLower(s) {
	case "", "backslash":
		return QuoteStyleBackslash, nil
	case "standard":
		return QuoteStyleStandard, nil
	default:
		return QuoteStyleBackslash, fmt.Errorf("unknown quote style %q", s)
	}
}

// Escape quotes a string literal.
func (q QuoteStyle) Escape(s string) string {
	if q == QuoteStyleStandard {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// ParseColumnNaming parses a column naming scheme name ("legacy" or "spreadsheet")
func ParseColumnNaming(s string) (ColumnNaming, error) {
	return model.ParseColumnNaming(s)
}

// ParseCompressionType parses a compression name ("none", "gz", "bz2", "xz", "zstd")
func ParseCompressionType(s string) (CompressionType, error) {
	return model.ParseCompressionType(s)
}

// ExtSQL is the extension of rendered SQL files
const ExtSQL = ".sql"

// Options configures parsing and rendering.
//
// Example:
//
//	options := NewOptions().
//		WithColumnNaming(ColumnNamingSpreadsheet).
//		WithCompression(CompressionGZ)
type Options struct {
	// ColumnNaming selects how column indexes are named
	ColumnNaming ColumnNaming
	// QuoteStyle selects how string literals are escaped in SQL text
	QuoteStyle QuoteStyle
	// RowGroups keeps rows nested in header-row and row-group containers
	RowGroups bool
	// Compression specifies the compression of written SQL files
	Compression CompressionType
}

// NewOptions creates default options (legacy column names, backslash escaping, no compression).
//
// Modify with:
//   - WithColumnNaming(): Change column naming (legacy, spreadsheet)
//   - WithQuoteStyle(): Change literal escaping (backslash, standard)
//   - WithRowGroups(): Keep rows inside row groups
//   - WithCompression(): Add compression (GZ, XZ, ZSTD)
func NewOptions() Options {
	return Options{
		ColumnNaming: ColumnNamingLegacy,
		QuoteStyle:   QuoteStyleBackslash,
		Compression:  CompressionNone,
	}
}

// WithColumnNaming sets the column naming scheme.
func (o Options) WithColumnNaming(naming ColumnNaming) Options {
	o.ColumnNaming = naming
	return o
}

// WithQuoteStyle sets the string literal escaping.
func (o Options) WithQuoteStyle(style QuoteStyle) Options {
	o.QuoteStyle = style
	return o
}

// WithRowGroups enables or disables row group flattening.
func (o Options) WithRowGroups(enabled bool) Options {
	o.RowGroups = enabled
	return o
}

// WithCompression adds compression to written SQL files.
//
// Options:
//   - CompressionNone: No compression (default)
//   - CompressionGZ: Gzip compression (.gz)
//   - CompressionXZ: XZ compression (.xz)
//   - CompressionZSTD: Zstandard compression (.zst)
func (o Options) WithCompression(compression CompressionType) Options {
	o.Compression = compression
	return o
}

// FileExtension returns the complete SQL file extension including compression
func (o Options) FileExtension() string {
	return ExtSQL + o.Compression.Extension()
}

func (o Options) treeOptions() model.TreeOptions {
	return model.TreeOptions{RowGroups: o.RowGroups}
}
