package ods2sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrEmptyData indicates that the input contains no data
	ErrEmptyData = errors.New("ods2sql: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("ods2sql: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("ods2sql: file not found")

	// ErrDuplicateTableName indicates two inputs define a table with the same name
	ErrDuplicateTableName = errors.New("ods2sql: duplicate table name")

	// ErrContextCancelled indicates context was cancelled
	ErrContextCancelled = errors.New("ods2sql: context cancelled")

	// ErrNotBuilt indicates an operation on a converter that was not built
	ErrNotBuilt = errors.New("ods2sql: converter is not built, did you call Build()?")

	// ErrStructural is matched by every malformed document error
	ErrStructural = model.ErrStructural

	// ErrContentNotFound indicates an ODS archive without content.xml
	ErrContentNotFound = model.ErrContentNotFound
)

// StructuralError reports an event stream that cannot form a valid document tree
type StructuralError = model.StructuralError

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("ods2sql: %s failed", ec.Operation)}

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}
	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
