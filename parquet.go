package ods2sql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/ods2sql/domain/model"
)

// ExtParquet is the extension of dumped Parquet files
const ExtParquet = ".parquet"

// DumpParquet writes every table of docs to dir as "<table>.parquet" and
// returns the written paths in table order. dir is created when missing.
//
// Each file has an "_id" column numbering the rows from 1, followed by one
// nullable column per inferred column type. Cells missing from narrow rows
// and numbers that do not parse are null. Numeric columns holding digits
// beyond the int64 or float64 range are written as strings.
func DumpParquet(ctx context.Context, dir string, docs []*Document, opts Options) ([]string, error) {
	if err := newValidator().validateOutputDirectory(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	used := make(map[string]bool)
	for _, doc := range docs {
		for _, table := range doc.Tables() {
			if err := ctx.Err(); err != nil {
				return paths, errors.Join(ErrContextCancelled, err)
			}

			base := parquetFileName(table.Name())
			name := base
			for i := 2; used[name]; i++ {
				name = fmt.Sprintf("%s_%d", base, i)
			}
			used[name] = true

			path := filepath.Join(dir, name+ExtParquet)
			if err := writeParquetTable(path, table, opts); err != nil {
				return paths, NewErrorContext("dump parquet", path).WithTable(table.Name()).Error(err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// parquetSchema returns the arrow schema of a table
func parquetSchema(table *Node, naming ColumnNaming) *arrow.Schema {
	types := table.ColumnTypes()
	fields := make([]arrow.Field, 0, len(types)+1)
	fields = append(fields, arrow.Field{Name: model.IDColumn, Type: arrow.PrimitiveTypes.Int64})
	for i, ct := range types {
		if table.IsWideColumn(i) {
			ct = CellTypeString
		}
		fields = append(fields, arrow.Field{
			Name:     naming.ColumnName(i),
			Type:     arrowType(ct),
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(ct CellType) arrow.DataType {
	switch ct {
	case CellTypeInteger:
		return arrow.PrimitiveTypes.Int64
	case CellTypeFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// tableRecord builds a single record holding all rows of a table
func tableRecord(table *Node, schema *arrow.Schema) arrow.Record {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	width := len(table.ColumnTypes())
	for i, row := range table.Rows() {
		builder.Field(0).(*array.Int64Builder).Append(int64(i + 1))

		values := table.RowValues(row)
		for col := range width {
			field := builder.Field(col + 1)
			if col >= len(values) || values[col] == nil {
				field.AppendNull()
				continue
			}
			switch v := values[col].(type) {
			case int64:
				field.(*array.Int64Builder).Append(v)
			case float64:
				field.(*array.Float64Builder).Append(v)
			case string:
				field.(*array.StringBuilder).Append(v)
			default:
				field.AppendNull()
			}
		}
	}
	return builder.NewRecord()
}

func writeParquetTable(path string, table *Node, opts Options) (err error) {
	file, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		// the parquet writer closes the file on success
		if closeErr := file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = closeErr
		}
	}()

	schema := parquetSchema(table, opts.ColumnNaming)
	record := tableRecord(table, schema)
	defer record.Release()

	writer, err := pqarrow.NewFileWriter(schema, file, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// parquetFileName turns a table name into a portable file name: letters,
// digits and underscores only, not starting with a digit.
func parquetFileName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_")
	var sb strings.Builder
	for _, r := range replacer.Replace(name) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	if result != "" && result[0] >= '0' && result[0] <= '9' {
		result = "table_" + result
	}
	if result == "" {
		result = "table"
	}
	return result
}
