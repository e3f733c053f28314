package ods2sql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadSQLite(t *testing.T) {
	t.Parallel()

	t.Run("typed values", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Measures", rows: [][]string{
			{"a", "1", "0.5", "99999999999999999999"},
			{"b", "2", "3"},
			{"", "", "", "7"},
		}}))
		db := openSQLite(t)
		require.NoError(t, LoadSQLite(context.Background(), db, []*Document{doc}, NewOptions()))

		rows, err := db.Query(`SELECT "_id", "A", typeof("B"), typeof("C"), "D" FROM "Measures" ORDER BY "_id"`)
		require.NoError(t, err)
		defer rows.Close()

		type record struct {
			id    int64
			a     string
			bType string
			cType string
			d     sql.NullString
		}
		var got []record
		for rows.Next() {
			var r record
			require.NoError(t, rows.Scan(&r.id, &r.a, &r.bType, &r.cType, &r.d))
			got = append(got, r)
		}
		require.NoError(t, rows.Err())

		assert.Equal(t, []record{
			{id: 1, a: "a", bType: "integer", cType: "real", d: sql.NullString{String: "99999999999999999999", Valid: true}},
			{id: 2, a: "b", bType: "integer", cType: "real", d: sql.NullString{}},
			{id: 3, a: "", bType: "null", cType: "null", d: sql.NullString{String: "7", Valid: true}},
		}, got)
	})

	t.Run("integers beyond int64 keep every digit", func(t *testing.T) {
		t.Parallel()

		doc := parseContent(t, contentXML(sheet{name: "Accounts", rows: [][]string{
			{"12345678901234567890123"},
			{"42"},
		}}))
		db := openSQLite(t)
		require.NoError(t, LoadSQLite(context.Background(), db, []*Document{doc}, NewOptions()))

		rows, err := db.Query(`SELECT typeof("A"), "A" FROM "Accounts" ORDER BY "_id"`)
		require.NoError(t, err)
		defer rows.Close()

		var got []string
		for rows.Next() {
			var typ, value string
			require.NoError(t, rows.Scan(&typ, &value))
			got = append(got, typ+":"+value)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"text:12345678901234567890123", "text:42"}, got)
	})

	t.Run("spreadsheet column names", func(t *testing.T) {
		t.Parallel()

		row := make([]string, 27)
		for i := range row {
			row[i] = "x"
		}
		doc := parseContent(t, contentXML(sheet{name: "Wide", rows: [][]string{row}}))
		db := openSQLite(t)
		opts := NewOptions().WithColumnNaming(ColumnNamingSpreadsheet)
		require.NoError(t, LoadSQLite(context.Background(), db, []*Document{doc}, opts))

		var last string
		require.NoError(t, db.QueryRow(`SELECT "AA" FROM "Wide"`).Scan(&last))
		assert.Equal(t, "x", last)
	})

	t.Run("failure rolls back every table", func(t *testing.T) {
		t.Parallel()

		first := parseContent(t, contentXML(sheet{name: "Other", rows: [][]string{{"1"}}}, peopleSheet))
		second := parseContent(t, contentXML(peopleSheet))
		db := openSQLite(t)

		err := LoadSQLite(context.Background(), db, []*Document{first, second}, NewOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table: People")

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&count))
		assert.Zero(t, count)
	})
}
