package ods2sql

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sheet describes one table of a generated spreadsheet
type sheet struct {
	name string
	rows [][]string
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// contentXML renders sheets as an ODS content.xml document.
// Every table ends with the padding rows a spreadsheet application writes.
func contentXML(sheets ...sheet) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString(`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"`)
	sb.WriteString(` xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"`)
	sb.WriteString(` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">`)
	sb.WriteString(`<office:body><office:spreadsheet>`)
	for _, s := range sheets {
		sb.WriteString(`<table:table table:name="` + xmlEscaper.Replace(s.name) + `">`)
		sb.WriteString(`<table:table-column table:number-columns-repeated="3"/>`)
		for _, row := range s.rows {
			sb.WriteString(`<table:table-row>`)
			for _, cell := range row {
				if cell == "" {
					sb.WriteString(`<table:table-cell/>`)
					continue
				}
				sb.WriteString(`<table:table-cell><text:p>` + xmlEscaper.Replace(cell) + `</text:p></table:table-cell>`)
			}
			sb.WriteString(`<table:table-cell table:number-columns-repeated="1021"/>`)
			sb.WriteString(`</table:table-row>`)
		}
		sb.WriteString(`<table:table-row table:number-rows-repeated="1000"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>`)
		sb.WriteString(`</table:table>`)
	}
	sb.WriteString(`</office:spreadsheet></office:body></office:document-content>`)
	return sb.String()
}

// odsArchive zips content as an ODS archive
func odsArchive(t testing.TB, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mt, err := w.Create("mimetype")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mt.Write([]byte("application/vnd.oasis.opendocument.spreadsheet")); err != nil {
		t.Fatal(err)
	}
	f, err := w.Create("content.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func odsBytes(t testing.TB, sheets ...sheet) []byte {
	t.Helper()
	return odsArchive(t, contentXML(sheets...))
}

// writeODS writes an ODS file into dir and returns its path
func writeODS(t testing.TB, dir, name string, sheets ...sheet) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, odsBytes(t, sheets...), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

var peopleSheet = sheet{
	name: "People",
	rows: [][]string{
		{"Alice", "30"},
		{"Bob", "25"},
	},
}
