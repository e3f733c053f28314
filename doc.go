// Package ods2sql converts spreadsheet documents into SQL.
//
// Every table (sheet) of an OpenDocument spreadsheet becomes a CREATE TABLE
// statement followed by one INSERT statement per row. Columns are named
// A, B, C, ... and typed from their content: a column whose cells are all
// whole numbers is INTEGER, one that also holds decimal numbers is DOUBLE,
// anything else is TEXT. Each table gets an "_id" surrogate key.
//
// # Features
//
//   - Convert .ods archives (and .fods flat documents, .xlsx workbooks) to SQL text
//   - Load documents into SQLite, PostgreSQL or Parquet files
//   - Query documents directly through the "ods2sql" database/sql driver
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Support for multiple input sources (files, directories, io.Reader, embed.FS)
//
// # Basic Usage
//
// Convert reads an ODS archive and writes SQL text:
//
//	if err := ods2sql.Convert(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// The output for a sheet named People holding two rows is:
//
//	CREATE TABLE "People"(
//	    "_id" INTEGER NOT NULL PRIMARY KEY,
//	    "A" TEXT,
//	    "B" INTEGER
//	);
//
//	BEGIN TRANSACTION;
//	    INSERT INTO "People" ("_id","A","B") VALUES (NULL,'Alice','30');
//	    INSERT INTO "People" ("_id","A","B") VALUES (NULL,'Bob','25');
//	COMMIT;
//
// # Advanced Usage
//
// For several inputs or other destinations, use the Converter:
//
//	converter, err := ods2sql.NewConverter().
//	    AddPath("budget.ods").
//	    AddPath("exports/").
//	    WithOptions(ods2sql.NewOptions().WithColumnNaming(ods2sql.ColumnNamingSpreadsheet)).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := converter.LoadSQLite(ctx, db); err != nil {
//	    log.Fatal(err)
//	}
//
// # Column Naming
//
// By default columns are named the way ods2sql always has: A to Z, then the
// letters least significant first (AB, BB, CB, ...). ColumnNamingSpreadsheet
// switches to the names spreadsheet applications show (AA, AB, AC, ...).
//
// # Malformed Documents
//
// A document whose markup cannot form a table tree (mismatched end tags,
// unnamed tables, unclosed elements) fails with an error matching
// ErrStructural, and nothing is written.
package ods2sql
