package model

// AttrTableName is the attribute holding a table's name
const AttrTableName = "table:name"

// Name returns the table name. It is empty until the table is finalized.
func (n *Node) Name() string {
	return n.name
}

// ColumnTypes returns the inferred column type vector of a finalized table.
func (n *Node) ColumnTypes() []CellType {
	return n.types
}

// ColumnCount returns the width of the widest row of a finalized table.
func (n *Node) ColumnCount() int {
	return len(n.types)
}

// WideColumns reports, per column, whether a numeric column holds digits
// beyond the range of int64 or float64. Loaders store such columns as text
// so that no value is lost.
func (n *Node) WideColumns() []bool {
	return n.wide
}

// IsWideColumn reports whether column i is a wide numeric column.
func (n *Node) IsWideColumn(i int) bool {
	return i < len(n.wide) && n.wide[i]
}

// finalizeTable takes the table name and infers the column types.
func (n *Node) finalizeTable() error {
	name, ok := n.attrs[AttrTableName]
	if !ok {
		return &StructuralError{
			Op:     "finalize",
			Tag:    n.tag,
			Reason: "table has no " + AttrTableName + " attribute",
		}
	}
	n.name = name
	n.types = InferColumnTypes(n.Rows())
	n.wide = wideColumns(n.Rows(), n.types)
	return nil
}

func wideColumns(rows []*Node, types []CellType) []bool {
	wide := make([]bool, len(types))
	for _, row := range rows {
		for i, cell := range row.Cells() {
			if !wide[i] && types[i].outOfRange(cell.Content()) {
				wide[i] = true
			}
		}
	}
	return wide
}
