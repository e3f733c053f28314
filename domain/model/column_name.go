package model

import (
	"fmt"
	"strings"
)

// ColumnNaming selects how column indexes are turned into names
type ColumnNaming int

const (
	// ColumnNamingLegacy writes the letters of the index least significant first:
	// 0 is "A", 1 is "B", 26 is "AB". Kept for output compatibility with
	// earlier ods2sql releases.
	ColumnNamingLegacy ColumnNaming = iota
	// ColumnNamingSpreadsheet uses spreadsheet column letters: 25 is "Z", 26 is "AA".
	ColumnNamingSpreadsheet
)

const alphabetSize = 26

// String returns the naming scheme name
func (c ColumnNaming) String() string {
	switch c {
	case ColumnNamingLegacy:
		return "legacy"
	case ColumnNamingSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

// ParseColumnNaming parses a naming scheme name
func ParseColumnNaming(s string) (ColumnNaming, error) {
	switch strings.ToLower(s) {
	case "", "legacy":
		return ColumnNamingLegacy, nil
	case "spreadsheet":
		return ColumnNamingSpreadsheet, nil
	default:
		return ColumnNamingLegacy, fmt.Errorf("unknown column naming %q", s)
	}
}

// ColumnName returns the name of the column at index i
func (c ColumnNaming) ColumnName(i int) string {
	if c == ColumnNamingSpreadsheet {
		return spreadsheetColumnName(i)
	}
	return legacyColumnName(i)
}

// ColumnNames returns the names of the first k columns
func (c ColumnNaming) ColumnNames(k int) []string {
	names := make([]string, k)
	for i := range names {
		names[i] = c.ColumnName(i)
	}
	return names
}

func legacyColumnName(i int) string {
	if i == 0 {
		return "A"
	}
	var sb strings.Builder
	for i > 0 {
		sb.WriteByte(byte('A' + i%alphabetSize))
		i /= alphabetSize
	}
	return sb.String()
}

func spreadsheetColumnName(i int) string {
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / alphabetSize {
		buf = append(buf, byte('A'+(n-1)%alphabetSize))
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return string(buf)
}
