// Package model provides domain model for ods2sql
package model

import (
	"errors"
	"math"
	"strconv"
)

// CellType is the inferred type of a cell or a column.
// The values form a lattice: integer < float < string.
type CellType int

const (
	// CellTypeInteger represents a whole number column
	CellTypeInteger CellType = iota
	// CellTypeFloat represents a decimal number column
	CellTypeFloat
	// CellTypeString represents a text column
	CellTypeString
)

const (
	// sqlTypeInteger is the SQL INTEGER type string
	sqlTypeInteger = "INTEGER"
	// sqlTypeDouble is the SQL DOUBLE type string
	sqlTypeDouble = "DOUBLE"
	// sqlTypeText is the SQL TEXT type string
	sqlTypeText = "TEXT"
)

// String returns the lattice name of the type
func (ct CellType) String() string {
	switch ct {
	case CellTypeInteger:
		return "integer"
	case CellTypeFloat:
		return "float"
	case CellTypeString:
		return "string"
	default:
		return "unknown"
	}
}

// SQLType returns the column type used in CREATE TABLE statements
func (ct CellType) SQLType() string {
	switch ct {
	case CellTypeInteger:
		return sqlTypeInteger
	case CellTypeFloat:
		return sqlTypeDouble
	default:
		return sqlTypeText
	}
}

// Value converts cell content to a Go value suitable for parameter binding.
// Numeric content that does not parse under the column type becomes nil.
// Digits beyond the range of int64 or float64 are returned unchanged as a string.
func (ct CellType) Value(content string) any {
	switch ct {
	case CellTypeInteger:
		v, err := strconv.ParseInt(content, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return content
		}
		if err != nil {
			return nil
		}
		return v
	case CellTypeFloat:
		v, err := strconv.ParseFloat(content, 64)
		if errors.Is(err, strconv.ErrRange) && isASCIIDigits(content) {
			return content
		}
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return v
	default:
		return content
	}
}

// outOfRange reports whether numeric content of this type only binds as a string.
func (ct CellType) outOfRange(content string) bool {
	if ct == CellTypeString || content == "" {
		return false
	}
	_, isString := ct.Value(content).(string)
	return isString
}
