package ods2sql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/nao1215/ods2sql/domain/model"
)

// readerInput is an input given as a stream instead of a path
type readerInput struct {
	reader      io.Reader
	name        string
	fileType    FileType
	compression CompressionType
}

// pathSet keeps file paths in insertion order, each file once
type pathSet struct {
	seen  map[string]struct{}
	paths []string
}

func newPathSet() *pathSet {
	return &pathSet{seen: make(map[string]struct{})}
}

// add records path unless the same file, by absolute path, was added before
func (s *pathSet) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	if _, ok := s.seen[abs]; ok {
		return nil
	}
	s.seen[abs] = struct{}{}
	s.paths = append(s.paths, path)
	return nil
}

// fileProcessor expands paths and filesystems into parseable inputs
type fileProcessor struct {
	validator *validator
}

func newFileProcessor() *fileProcessor {
	return &fileProcessor{validator: newValidator()}
}

// collectFilesFromPaths validates every path and expands directories into
// the spreadsheets below them.
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	set := newPathSet()
	for _, path := range paths {
		if err := fp.validator.validatePath(path); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			if err := set.add(path); err != nil {
				return nil, err
			}
			continue
		}

		found, err := spreadsheetsIn(os.DirFS(path))
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
		}
		for _, name := range preferUncompressed(found) {
			if err := set.add(filepath.Join(path, filepath.FromSlash(name))); err != nil {
				return nil, err
			}
		}
	}
	return set.paths, nil
}

// spreadsheetsIn lists the supported files of a filesystem, slash separated
func spreadsheetsIn(fsys fs.FS) ([]string, error) {
	var found []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(path) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

// processFilesystemsToReaders opens every supported file of the filesystems as a reader input
func (fp *fileProcessor) processFilesystemsToReaders(ctx context.Context, filesystems []fs.FS) ([]readerInput, error) {
	var inputs []readerInput
	for _, fsys := range filesystems {
		if fsys == nil {
			return nil, errors.New("FS cannot be nil")
		}
		opened, err := fp.openSpreadsheets(ctx, fsys)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		inputs = append(inputs, opened...)
	}
	return inputs, nil
}

func (fp *fileProcessor) openSpreadsheets(ctx context.Context, fsys fs.FS) ([]readerInput, error) {
	found, err := spreadsheetsIn(fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(found) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}

	names := preferUncompressed(found)
	inputs := make([]readerInput, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			closeInputs(inputs)
			return nil, err
		}
		file, err := fsys.Open(name)
		if err != nil {
			closeInputs(inputs)
			return nil, fmt.Errorf("failed to open FS file %s: %w", name, err)
		}
		inputs = append(inputs, readerInput{
			reader:      file,
			name:        name,
			fileType:    model.DetectFileType(name),
			compression: model.DetectCompressionType(name),
		})
	}
	return inputs, nil
}

func closeInputs(inputs []readerInput) {
	for _, input := range inputs {
		if closer, ok := input.reader.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

// preferUncompressed drops compressed files whose uncompressed version is
// also present and returns the remaining files sorted.
func preferUncompressed(files []string) []string {
	byDocument := make(map[string]string, len(files))
	for _, file := range files {
		document := model.RemoveCompressionExtension(file)
		current, ok := byDocument[document]
		if !ok || (file == document && current != document) {
			byDocument[document] = file
		}
	}

	result := make([]string, 0, len(byDocument))
	for _, file := range byDocument {
		result = append(result, file)
	}
	slices.Sort(result)
	return result
}
