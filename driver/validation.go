package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
)

// Limits on what a single connection loads into memory
const (
	// MaxFileSize is the largest spreadsheet file accepted (1GB)
	MaxFileSize = 1024 * 1024 * 1024
	// MaxFilesPerDirectory is the most spreadsheets loaded from one directory
	MaxFilesPerDirectory = 1000
	// MaxColumnCount is the widest table accepted, "_id" included.
	// It matches the default column limit of SQLite.
	MaxColumnCount = 2000
	// maxParentLevels is how far a relative path may climb above the working directory
	maxParentLevels = 3
)

var (
	// ErrFileTooLarge is returned when a file exceeds MaxFileSize
	ErrFileTooLarge = errors.New("file too large")

	// ErrTooManyFiles is returned when a directory holds more than MaxFilesPerDirectory spreadsheets
	ErrTooManyFiles = errors.New("too many files in directory")

	// ErrTooManyColumns is returned when a table is wider than MaxColumnCount
	ErrTooManyColumns = errors.New("too many columns")

	// ErrInvalidPath is returned when a path is malformed or points at system locations
	ErrInvalidPath = errors.New("invalid or dangerous path")
)

// protectedPrefixes are lower-cased locations spreadsheets are never read from
var protectedPrefixes = []string{
	"/etc/", "/proc/", "/sys/", "/dev/", "/boot/",
	`c:\windows\`, "c:/windows/",
	`c:\program files`, "c:/program files",
	`c:\users\administrator`, "c:/users/administrator",
	`\\`, // UNC and device paths
}

// reservedDeviceNames cannot be used as file names on Windows, whatever the extension
var reservedDeviceNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// ValidatePath rejects paths that are empty, contain a null byte, climb too
// far above the working directory, point into system directories or name a
// Windows device. Both / and \ are treated as separators on every platform.
func ValidatePath(path string) error {
	lower := strings.ToLower(path)
	switch {
	case strings.TrimSpace(path) == "":
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	case strings.ContainsRune(path, 0):
		return fmt.Errorf("%w: null byte in path", ErrInvalidPath)
	case parentLevels(path) > maxParentLevels:
		return fmt.Errorf("%w: too many parent directory references", ErrInvalidPath)
	case hasAnyPrefix(lower, protectedPrefixes):
		return fmt.Errorf("%w: system directory", ErrInvalidPath)
	}
	if _, reserved := reservedDeviceNames[deviceName(lower)]; reserved {
		return fmt.Errorf("%w: reserved device name", ErrInvalidPath)
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// parentLevels returns how many directories above its starting point a path reaches
func parentLevels(path string) int {
	depth, lowest := 0, 0
	for _, part := range strings.FieldsFunc(path, isSeparator) {
		switch part {
		case ".":
		case "..":
			depth--
			lowest = min(lowest, depth)
		default:
			depth++
		}
	}
	return -lowest
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// deviceName returns the last path element without compression and document extensions
func deviceName(path string) string {
	parts := strings.FieldsFunc(path, isSeparator)
	if len(parts) == 0 {
		return ""
	}
	name := model.RemoveCompressionExtension(parts[len(parts)-1])
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ValidateColumnCount checks a table width, "_id" included, against MaxColumnCount
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManyColumns, columnCount, MaxColumnCount)
	}
	return nil
}

// ValidateFileCount checks the number of spreadsheets found in a directory
func ValidateFileCount(fileCount int) error {
	if fileCount > MaxFilesPerDirectory {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManyFiles, fileCount, MaxFilesPerDirectory)
	}
	return nil
}

// ValidateFileSize checks if a file is small enough to be loaded into memory
func ValidateFileSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

// IsValidFileName reports whether a directory entry should be loaded.
// Hidden files and names with characters Windows forbids are skipped.
func IsValidFileName(fileName string) bool {
	return !strings.HasPrefix(fileName, ".") && !strings.ContainsAny(fileName, "<>:\"|?*\x00")
}
