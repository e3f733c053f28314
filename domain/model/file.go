package model

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType represents supported spreadsheet file types
type FileType int

const (
	// FileTypeODS represents an OpenDocument spreadsheet archive
	FileTypeODS FileType = iota
	// FileTypeFODS represents a flat (single XML file) OpenDocument spreadsheet
	FileTypeFODS
	// FileTypeXLSX represents an Excel XLSX workbook
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtODS is the OpenDocument spreadsheet extension
	ExtODS = ".ods"
	// ExtFODS is the flat OpenDocument spreadsheet extension
	ExtFODS = ".fods"
	// ExtXLSX is the Excel XLSX extension
	ExtXLSX = ".xlsx"
)

// String returns the file type name
func (ft FileType) String() string {
	switch ft {
	case FileTypeODS:
		return "ods"
	case FileTypeFODS:
		return "fods"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// Extension returns the file extension for the file type
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeODS:
		return ExtODS
	case FileTypeFODS:
		return ExtFODS
	case FileTypeXLSX:
		return ExtXLSX
	default:
		return ""
	}
}

// File represents a spreadsheet file that can be parsed into a document tree
type File struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFile creates a new File
func NewFile(path string) *File {
	return &File{
		path:        path,
		fileType:    DetectFileType(path),
		compression: DetectCompressionType(path),
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	return DetectFileType(fileName) != FileTypeUnsupported
}

// DetectFileType detects file type from extension, considering compressed files
func DetectFileType(path string) FileType {
	basePath := RemoveCompressionExtension(path)
	switch strings.ToLower(filepath.Ext(basePath)) {
	case ExtODS:
		return FileTypeODS
	case ExtFODS:
		return FileTypeFODS
	case ExtXLSX:
		return FileTypeXLSX
	default:
		return FileTypeUnsupported
	}
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression of the file
func (f *File) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if the file is compressed
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// Open opens the file and returns a reader that handles decompression
func (f *File) Open() (io.Reader, func() error, error) {
	file, err := os.Open(f.path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, err
	}

	reader, cleanup, err := NewDecompressor(file, f.compression)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	closer := func() error {
		cleanupErr := cleanup()
		if closeErr := file.Close(); closeErr != nil && cleanupErr == nil {
			cleanupErr = closeErr
		}
		return cleanupErr
	}
	return reader, closer, nil
}

// Parse reads the file and builds its document tree
func (f *File) Parse(ctx context.Context, options TreeOptions) (*Node, error) {
	if f.fileType == FileTypeUnsupported {
		return nil, fmt.Errorf("unsupported file type: %s", f.path)
	}

	reader, closer, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer() }()

	return Parse(ctx, reader, f.fileType, options)
}

// Parse builds the document tree of an uncompressed spreadsheet stream
func Parse(ctx context.Context, reader io.Reader, fileType FileType, options TreeOptions) (*Node, error) {
	if fileType == FileTypeFODS {
		options.FlatXML = true
	}
	builder := NewTreeBuilder(options)

	var err error
	switch fileType {
	case FileTypeODS:
		err = DecodeODS(ctx, reader, builder)
	case FileTypeFODS:
		err = DecodeXML(ctx, reader, builder)
	case FileTypeXLSX:
		err = DecodeXLSX(ctx, reader, builder)
	default:
		return nil, fmt.Errorf("unsupported file type: %v", fileType)
	}
	if err != nil {
		return nil, err
	}
	return builder.Root()
}
