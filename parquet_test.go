package ods2sql

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readParquet(t *testing.T, path string) arrow.Table {
	t.Helper()

	reader, err := pqfile.OpenParquetFile(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)

	table, err := arrowReader.ReadTable(context.Background())
	require.NoError(t, err)
	t.Cleanup(table.Release)
	return table
}

func TestDumpParquet(t *testing.T) {
	t.Parallel()

	t.Run("typed columns", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Sales 2024", rows: [][]string{
			{"widget", "3", "1.5"},
			{"gadget", "4"},
		}}))
		dir := filepath.Join(t.TempDir(), "out")

		paths, err := DumpParquet(context.Background(), dir, []*Document{doc}, NewOptions())
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(dir, "Sales_2024.parquet")}, paths)

		table := readParquet(t, paths[0])
		require.Equal(t, int64(2), table.NumRows())

		schema := table.Schema()
		require.Equal(t, 4, len(schema.Fields()))
		assert.Equal(t, "_id", schema.Field(0).Name)
		assert.Equal(t, arrow.PrimitiveTypes.Int64.ID(), schema.Field(0).Type.ID())
		assert.Equal(t, "A", schema.Field(1).Name)
		assert.Equal(t, arrow.BinaryTypes.String.ID(), schema.Field(1).Type.ID())
		assert.Equal(t, arrow.PrimitiveTypes.Int64.ID(), schema.Field(2).Type.ID())
		assert.Equal(t, arrow.PrimitiveTypes.Float64.ID(), schema.Field(3).Type.ID())

		ids := table.Column(0).Data().Chunk(0).(*array.Int64)
		assert.Equal(t, []int64{1, 2}, ids.Int64Values())

		names := table.Column(1).Data().Chunk(0).(*array.String)
		assert.Equal(t, "widget", names.Value(0))
		assert.Equal(t, "gadget", names.Value(1))

		prices := table.Column(3).Data().Chunk(0).(*array.Float64)
		assert.InDelta(t, 1.5, prices.Value(0), 1e-9)
		assert.True(t, prices.IsNull(1))
	})

	t.Run("integers beyond int64 become strings", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Accounts", rows: [][]string{
			{"12345678901234567890123"},
			{""},
			{"42"},
		}}))
		paths, err := DumpParquet(context.Background(), t.TempDir(), []*Document{doc}, NewOptions())
		require.NoError(t, err)

		table := readParquet(t, paths[0])
		require.Equal(t, int64(3), table.NumRows())
		assert.Equal(t, arrow.BinaryTypes.String.ID(), table.Schema().Field(1).Type.ID())

		accounts := table.Column(1).Data().Chunk(0).(*array.String)
		assert.Equal(t, "12345678901234567890123", accounts.Value(0))
		assert.True(t, accounts.IsNull(1))
		assert.Equal(t, "42", accounts.Value(2))
	})

	t.Run("file names stay unique", func(t *testing.T) {
		t.Parallel()

		first := parseContent(t, contentXML(sheet{name: "a-b", rows: [][]string{{"1"}}}))
		second := parseContent(t, contentXML(sheet{name: "a.b", rows: [][]string{{"2"}}}, sheet{name: "2024"}))
		dir := t.TempDir()

		paths, err := DumpParquet(context.Background(), dir, []*Document{first, second}, NewOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a_b.parquet"),
			filepath.Join(dir, "a_b_2.parquet"),
			filepath.Join(dir, "table_2024.parquet"),
		}, paths)
		for _, p := range paths {
			_, err := os.Stat(p)
			assert.NoError(t, err)
		}
	})

	t.Run("output path is a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
		_, err := DumpParquet(context.Background(), file, nil, NewOptions())
		assert.Error(t, err)
	})
}

func TestParquetFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "People", want: "People"},
		{input: "Sales 2024", want: "Sales_2024"},
		{input: "q1.report-final", want: "q1_report_final"},
		{input: "1st", want: "table_1st"},
		{input: "日本", want: "table"},
		{input: "../../etc", want: "____etc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parquetFileName(tt.input), tt.input)
	}
}
