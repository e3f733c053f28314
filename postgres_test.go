package ods2sql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type copyCall struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
}

// fakePostgres records the statements and copies it receives
type fakePostgres struct {
	execs   []string
	copies  []copyCall
	execErr error
}

func (f *fakePostgres) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakePostgres) CopyFrom(_ context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	call := copyCall{table: tableName, columns: columnNames}
	for rowSrc.Next() {
		values, err := rowSrc.Values()
		if err != nil {
			return 0, err
		}
		call.rows = append(call.rows, values)
	}
	f.copies = append(f.copies, call)
	return int64(len(call.rows)), nil
}

func TestLoadPostgres(t *testing.T) {
	t.Parallel()

	t.Run("create and copy", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "People", rows: [][]string{
			{"Alice", "30", "1.5"},
			{"Bob", "25"},
		}}))
		db := &fakePostgres{}
		require.NoError(t, LoadPostgres(context.Background(), db, []*Document{doc}, NewOptions()))

		assert.Equal(t, []string{
			`CREATE TABLE "People" ("_id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY, "A" TEXT, "B" BIGINT, "C" DOUBLE PRECISION)`,
		}, db.execs)
		require.Len(t, db.copies, 1)
		assert.Equal(t, pgx.Identifier{"People"}, db.copies[0].table)
		assert.Equal(t, []string{"A", "B", "C"}, db.copies[0].columns)
		assert.Equal(t, [][]any{
			{"Alice", int64(30), 1.5},
			{"Bob", int64(25), nil},
		}, db.copies[0].rows)
	})

	t.Run("integers beyond int64 become numeric", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Accounts", rows: [][]string{
			{"12345678901234567890123", "1"},
			{"", "2"},
			{"42", "3"},
		}}))
		db := &fakePostgres{}
		require.NoError(t, LoadPostgres(context.Background(), db, []*Document{doc}, NewOptions()))

		assert.Equal(t, []string{
			`CREATE TABLE "Accounts" ("_id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY, "A" NUMERIC, "B" BIGINT)`,
		}, db.execs)
		require.Len(t, db.copies, 1)
		rows := db.copies[0].rows
		require.Len(t, rows, 3)

		for i, want := range map[int]string{0: "12345678901234567890123", 2: "42"} {
			num, ok := rows[i][0].(pgtype.Numeric)
			require.True(t, ok, "row %d: got %T", i, rows[i][0])
			assert.True(t, num.Valid)
			assert.Zero(t, num.Exp)
			assert.Equal(t, want, num.Int.String())
		}
		assert.Nil(t, rows[1][0])
		assert.Equal(t, int64(2), rows[1][1])
	})

	t.Run("table without columns", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Empty"}))
		db := &fakePostgres{}
		require.NoError(t, LoadPostgres(context.Background(), db, []*Document{doc}, NewOptions()))

		assert.Equal(t, []string{
			`CREATE TABLE "Empty" ("_id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY)`,
		}, db.execs)
		assert.Empty(t, db.copies)
	})

	t.Run("exec failure names the table", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(peopleSheet))
		db := &fakePostgres{execErr: errors.New("permission denied")}
		err := LoadPostgres(context.Background(), db, []*Document{doc}, NewOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table: People")
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestPostgresCreateTableStatementQuotesNames(t *testing.T) {
	t.Parallel()

	doc := parseContent(t, contentXML(sheet{name: `My "Sheet"`, rows: [][]string{{"x"}}}))
	got := PostgresCreateTableStatement(doc.Tables()[0], ColumnNamingLegacy)
	assert.Equal(t, `CREATE TABLE "My ""Sheet""" ("_id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY, "A" TEXT)`, got)
}
