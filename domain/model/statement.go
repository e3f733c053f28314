package model

import (
	"fmt"
	"strings"
)

// IDColumn is the surrogate key column every generated table starts with
const IDColumn = "_id"

// QuoteIdentifier quotes an SQL identifier, doubling embedded quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableStatement returns the SQLite schema statement of a finalized table.
// Wide numeric columns are declared TEXT.
func (n *Node) CreateTableStatement(naming ColumnNaming) string {
	columns := make([]string, 0, len(n.types)+1)
	columns = append(columns, QuoteIdentifier(IDColumn)+" INTEGER NOT NULL PRIMARY KEY")
	for i, ct := range n.types {
		sqlType := ct.SQLType()
		if n.IsWideColumn(i) {
			sqlType = sqlTypeText
		}
		columns = append(columns, fmt.Sprintf("%s %s", QuoteIdentifier(naming.ColumnName(i)), sqlType))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(n.name), strings.Join(columns, ", "))
}

// InsertStatement returns a parameterized insert for a row of the given width.
// The surrogate key is left to the database.
func (n *Node) InsertStatement(width int, naming ColumnNaming) string {
	columns := make([]string, width)
	placeholders := make([]string, width)
	for i := range width {
		columns[i] = QuoteIdentifier(naming.ColumnName(i))
		placeholders[i] = "?"
	}
	if width == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", QuoteIdentifier(n.name))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(n.name),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// RowValues converts the cells of a row to typed values using the table's column types.
// Every non-empty cell of a wide column is returned as its content.
func (n *Node) RowValues(row *Node) []any {
	cells := row.Cells()
	values := make([]any, len(cells))
	for i, c := range cells {
		ct := CellTypeString
		if i < len(n.types) {
			ct = n.types[i]
		}
		switch content := c.Content(); {
		case n.IsWideColumn(i) && content == "":
			values[i] = nil
		case n.IsWideColumn(i):
			values[i] = content
		default:
			values[i] = ct.Value(content)
		}
	}
	return values
}
