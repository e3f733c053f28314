package ods2sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LoadSQLite creates every table of docs in db and inserts its rows, all in
// one transaction. Column values are typed from the inferred column types;
// an integer or float cell that does not parse is stored as NULL. Numeric
// columns holding digits beyond the int64 or float64 range are created as
// TEXT and keep the cell content.
//
// db can be any database/sql handle speaking the SQLite dialect, such as one
// opened with the "sqlite" driver of modernc.org/sqlite.
func LoadSQLite(ctx context.Context, db *sql.DB, docs []*Document, opts Options) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
			}
		}
	}()

	for _, doc := range docs {
		for _, table := range doc.Tables() {
			if err := loadSQLiteTable(ctx, tx, table, opts); err != nil {
				return NewErrorContext("load sqlite", doc.Source).WithTable(table.Name()).Error(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadSQLiteTable creates one table and inserts its rows. Rows of equal width
// share a prepared statement.
func loadSQLiteTable(ctx context.Context, tx *sql.Tx, table *Node, opts Options) error {
	if _, err := tx.ExecContext(ctx, table.CreateTableStatement(opts.ColumnNaming)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	stmts := make(map[int]*sql.Stmt)
	defer func() {
		for _, stmt := range stmts {
			_ = stmt.Close()
		}
	}()

	for _, row := range table.Rows() {
		values := table.RowValues(row)
		stmt, ok := stmts[len(values)]
		if !ok {
			var err error
			stmt, err = tx.PrepareContext(ctx, table.InsertStatement(len(values), opts.ColumnNaming))
			if err != nil {
				return fmt.Errorf("failed to prepare insert: %w", err)
			}
			stmts[len(values)] = stmt
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return nil
}
