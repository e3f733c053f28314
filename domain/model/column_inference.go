package model

import (
	"math"
	"strconv"
	"strings"
)

// ClassifyCell infers the type of a single cell's content.
//
// Content made only of ASCII digits is an integer, and so is the empty string.
// Decimal digits of other scripts, such as "١٢٣" or "１２３", are not
// parsed as numbers by SQL engines and classify as strings.
// Anything strconv.ParseFloat accepts as a finite decimal number is a float.
// Everything else is a string.
func ClassifyCell(content string) CellType {
	if isASCIIDigits(content) {
		return CellTypeInteger
	}
	if isDecimalFloat(content) {
		return CellTypeFloat
	}
	return CellTypeString
}

// Unify returns the least upper bound of two types in the lattice.
func Unify(a, b CellType) CellType {
	if a == CellTypeString || b == CellTypeString {
		return CellTypeString
	}
	if a == CellTypeFloat || b == CellTypeFloat {
		return CellTypeFloat
	}
	return CellTypeInteger
}

// InferColumnTypes infers one type per column across all rows.
// The vector is as long as the widest row; a column's type is the unification
// of every cell present at that index.
func InferColumnTypes(rows []*Node) []CellType {
	var types []CellType
	for _, row := range rows {
		for i, cell := range row.Cells() {
			ct := ClassifyCell(cell.Content())
			if i >= len(types) {
				types = append(types, ct)
				continue
			}
			types[i] = Unify(types[i], ct)
		}
	}
	return types
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimalFloat rejects the hexadecimal, infinity and NaN forms ParseFloat also understands.
func isDecimalFloat(s string) bool {
	if strings.ContainsAny(s, "xX") {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
