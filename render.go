package ods2sql

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ods2sql/domain/model"
)

const indent = "    "

// RenderSQL writes the CREATE TABLE and INSERT statements of every table of
// every document, in order.
//
// Per table the output is:
//
//	CREATE TABLE "People"(
//	    "_id" INTEGER NOT NULL PRIMARY KEY,
//	    "A" TEXT,
//	    "B" TEXT
//	);
//
//	BEGIN TRANSACTION;
//	    INSERT INTO "People" ("_id","A","B") VALUES (NULL,'Alice','30');
//	COMMIT;
//
// Identifiers are double quoted verbatim.
func RenderSQL(w io.Writer, docs []*Document, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, doc := range docs {
		for _, table := range doc.Tables() {
			renderTable(bw, table, opts)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write SQL: %w", err)
	}
	return nil
}

// RenderTable writes the statements of a single finalized table.
func RenderTable(w io.Writer, table *Node, opts Options) error {
	bw := bufio.NewWriter(w)
	renderTable(bw, table, opts)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write SQL: %w", err)
	}
	return nil
}

func renderTable(bw *bufio.Writer, table *Node, opts Options) {
	types := table.ColumnTypes()
	names := opts.ColumnNaming.ColumnNames(len(types))

	fields := make([]string, 0, len(types)+1)
	fields = append(fields, fmt.Sprintf(`%s"%s" INTEGER NOT NULL PRIMARY KEY`, indent, model.IDColumn))
	for i, ct := range types {
		fields = append(fields, fmt.Sprintf(`%s"%s" %s`, indent, names[i], ct.SQLType()))
	}

	fmt.Fprintf(bw, "CREATE TABLE \"%s\"(\n", table.Name())
	bw.WriteString(strings.Join(fields, ",\n"))
	bw.WriteString("\n);\n\n")

	bw.WriteString("BEGIN TRANSACTION;\n")
	for _, row := range table.Rows() {
		cells := row.Cells()
		cols := make([]string, 0, len(cells)+1)
		vals := make([]string, 0, len(cells)+1)
		cols = append(cols, `"`+model.IDColumn+`"`)
		vals = append(vals, "NULL")
		for i, c := range cells {
			cols = append(cols, `"`+names[i]+`"`)
			vals = append(vals, opts.QuoteStyle.Escape(c.Content()))
		}
		fmt.Fprintf(bw, "%sINSERT INTO \"%s\" (%s) VALUES (%s);\n",
			indent, table.Name(), strings.Join(cols, ","), strings.Join(vals, ","))
	}
	bw.WriteString("COMMIT;\n")
}
