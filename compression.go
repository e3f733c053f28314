package ods2sql

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/ods2sql/domain/model"
	"github.com/ulikunitz/xz"
)

// compressors create the writers for SQL output. bzip2 has no encoder in
// the standard library, so it can only be read.
var compressors = map[CompressionType]func(io.Writer) (io.WriteCloser, error){
	CompressionGZ: func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
	CompressionXZ: func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	},
	CompressionZSTD: func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	},
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressWriter wraps w so that everything written is compressed with
// compressionType. Close flushes the compressor but does not close w.
func NewCompressWriter(w io.Writer, compressionType CompressionType) (io.WriteCloser, error) {
	if compressionType == CompressionNone {
		return nopWriteCloser{w}, nil
	}
	newWriter, ok := compressors[compressionType]
	if !ok {
		return nil, fmt.Errorf("%s compression is not supported for writing", compressionType)
	}
	writer, err := newWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", compressionType, err)
	}
	return writer, nil
}

// NewDecompressReader wraps r with a decompressor for compressionType. The
// returned function releases the decompressor.
func NewDecompressReader(r io.Reader, compressionType CompressionType) (io.Reader, func() error, error) {
	return model.NewDecompressor(r, compressionType)
}

// sqlFile is a created output file with its compressor on top
type sqlFile struct {
	file       *os.File
	compressor io.WriteCloser
}

// createSQLFile creates path for writing SQL compressed with compressionType
func createSQLFile(path string, compressionType CompressionType) (*sqlFile, error) {
	file, err := os.Create(path) //nolint:gosec // output path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	compressor, err := NewCompressWriter(file, compressionType)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return &sqlFile{file: file, compressor: compressor}, nil
}

// writeSQLFile creates path and fills it with render. Nothing is left at
// path when render or closing the file fails.
func writeSQLFile(path string, compressionType CompressionType, render func(io.Writer) error) error {
	file, err := createSQLFile(path, compressionType)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		return errors.Join(err, file.Close(), removeIfExists(path))
	}
	if err := file.Close(); err != nil {
		return errors.Join(err, removeIfExists(path))
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove partial output: %w", err)
	}
	return nil
}

func (f *sqlFile) Write(p []byte) (int, error) {
	return f.compressor.Write(p)
}

// Close flushes the compressor, syncs and closes the file. The first error wins.
func (f *sqlFile) Close() error {
	err := f.compressor.Close()
	if syncErr := f.file.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := f.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// sqlFilePath returns path with the extension of compressionType appended
// unless path already carries it.
func sqlFilePath(path string, compressionType CompressionType) string {
	if model.DetectCompressionType(path) == compressionType {
		return path
	}
	return path + compressionType.Extension()
}
