package ods2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nao1215/ods2sql/domain/model"
)

// PostgresTx is the subset of pgx used to load tables.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type PostgresTx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// LoadPostgres creates every table of docs and copies its rows in with the
// COPY protocol. The "_id" column is an identity column filled by the server
// in row order.
//
// Run it inside a transaction to make the load atomic, as Converter.LoadPostgres does.
func LoadPostgres(ctx context.Context, db PostgresTx, docs []*Document, opts Options) error {
	for _, doc := range docs {
		for _, table := range doc.Tables() {
			if err := loadPostgresTable(ctx, db, table, opts); err != nil {
				return NewErrorContext("load postgres", doc.Source).WithTable(table.Name()).Error(err)
			}
		}
	}
	return nil
}

// PostgresCreateTableStatement returns the PostgreSQL schema statement of a table.
// Numeric columns holding digits beyond the int64 or float64 range are NUMERIC.
func PostgresCreateTableStatement(table *Node, naming ColumnNaming) string {
	types := table.ColumnTypes()
	columns := make([]string, 0, len(types)+1)
	columns = append(columns, model.QuoteIdentifier(model.IDColumn)+" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY")
	for i, ct := range types {
		pgType := postgresType(ct)
		if table.IsWideColumn(i) {
			pgType = "NUMERIC"
		}
		columns = append(columns, model.QuoteIdentifier(naming.ColumnName(i))+" "+pgType)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", model.QuoteIdentifier(table.Name()), strings.Join(columns, ", "))
}

func postgresType(ct CellType) string {
	switch ct {
	case CellTypeInteger:
		return "BIGINT"
	case CellTypeFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func loadPostgresTable(ctx context.Context, db PostgresTx, table *Node, opts Options) error {
	if _, err := db.Exec(ctx, PostgresCreateTableStatement(table, opts.ColumnNaming)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	width := table.ColumnCount()
	if width == 0 {
		for range table.Rows() {
			if _, err := db.Exec(ctx, fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", model.QuoteIdentifier(table.Name()))); err != nil {
				return fmt.Errorf("failed to insert row: %w", err)
			}
		}
		return nil
	}

	rows := make([][]any, 0, len(table.Rows()))
	for _, row := range table.Rows() {
		values := table.RowValues(row)
		padded := make([]any, width)
		for i, v := range values {
			content, ok := v.(string)
			if !ok || !table.IsWideColumn(i) {
				padded[i] = v
				continue
			}
			var num pgtype.Numeric
			if err := num.Scan(content); err != nil {
				return fmt.Errorf("failed to convert %q to numeric: %w", content, err)
			}
			padded[i] = num
		}
		rows = append(rows, padded)
	}

	n, err := db.CopyFrom(ctx, pgx.Identifier{table.Name()}, opts.ColumnNaming.ColumnNames(width), pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy rows: %w", err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copied %d of %d rows", n, len(rows))
	}
	return nil
}
