package ods2sql

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
)

// validator handles validation logic for Converter
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	if !info.IsDir() && model.DetectFileType(path) == FileTypeUnsupported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateReader validates a reader input
func (v *validator) validateReader(input readerInput) error {
	if input.reader == nil {
		return errors.New("reader cannot be nil")
	}
	if input.name == "" {
		return errors.New("name must be specified for reader input")
	}
	if input.fileType == FileTypeUnsupported {
		return fmt.Errorf("%w: file type must be specified for reader input", ErrUnsupportedFormat)
	}

	// Only readers that can be inspected without consuming them are checked here
	if sr, ok := input.reader.(*strings.Reader); ok && sr.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyData, input.name)
	}
	return nil
}

// validateOutputDirectory validates that the output directory can be created/accessed
func (v *validator) validateOutputDirectory(outputDir string) error {
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory cannot be empty")
	}

	info, err := os.Stat(outputDir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check output directory: %w", err)
	}
	return nil
}

// validateFinalState performs final validation to ensure we have valid inputs
func (v *validator) validateFinalState(collectedPaths []string, readers []readerInput, originalPaths []string) error {
	if len(collectedPaths) > 0 || len(readers) > 0 {
		return nil
	}
	for _, path := range originalPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return errors.New("no supported files found in directory")
		}
	}
	return errors.New("no valid input files found")
}
