package model

import (
	"strings"
	"testing"
)

func TestCellType_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct      CellType
		name    string
		sqlType string
	}{
		{ct: CellTypeInteger, name: "integer", sqlType: "INTEGER"},
		{ct: CellTypeFloat, name: "float", sqlType: "DOUBLE"},
		{ct: CellTypeString, name: "string", sqlType: "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ct.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.ct.SQLType(); got != tt.sqlType {
				t.Errorf("SQLType() = %q, want %q", got, tt.sqlType)
			}
		})
	}
}

func TestCellType_Value(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ct       CellType
		content  string
		expected any
	}{
		{name: "integer", ct: CellTypeInteger, content: "42", expected: int64(42)},
		{name: "empty integer is null", ct: CellTypeInteger, content: "", expected: nil},
		{name: "overflowing integer keeps its digits", ct: CellTypeInteger, content: "99999999999999999999", expected: "99999999999999999999"},
		{name: "malformed integer is null", ct: CellTypeInteger, content: "12a", expected: nil},
		{name: "float", ct: CellTypeFloat, content: "4.5", expected: 4.5},
		{name: "integer content in float column", ct: CellTypeFloat, content: "3", expected: float64(3)},
		{name: "empty float is null", ct: CellTypeFloat, content: "", expected: nil},
		{name: "digits beyond float range keep their digits", ct: CellTypeFloat, content: "1" + strings.Repeat("0", 400), expected: "1" + strings.Repeat("0", 400)},
		{name: "string", ct: CellTypeString, content: "O'Brien", expected: "O'Brien"},
		{name: "empty string stays empty", ct: CellTypeString, content: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ct.Value(tt.content); got != tt.expected {
				t.Errorf("Value(%q) = %#v, want %#v", tt.content, got, tt.expected)
			}
		})
	}
}
