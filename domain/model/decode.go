package model

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentEntry is the archive member holding an ODS document's content
const ContentEntry = "content.xml"

// contextCheckInterval is how many tokens are decoded between context checks
const contextCheckInterval = 1000

// textNamespace is the prefix of elements whose whitespace is content
const textNamespace = "text:"

// DecodeXML reads an OpenDocument XML stream and forwards its events to h.
//
// Element and attribute names keep their namespace prefix ("table:table").
// Whitespace-only text outside text:* elements is indentation and is dropped.
func DecodeXML(ctx context.Context, r io.Reader, h EventHandler) error {
	decoder := xml.NewDecoder(r)
	var open []string

	for count := 0; ; count++ {
		if count%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("decoding interrupted: %w", err)
			}
		}

		token, err := decoder.RawToken()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			tag := qualifiedName(t.Name)
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[qualifiedName(a.Name)] = a.Value
			}
			open = append(open, tag)
			if err := h.StartElement(tag, attrs); err != nil {
				return err
			}
		case xml.EndElement:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
			if err := h.EndElement(qualifiedName(t.Name)); err != nil {
				return err
			}
		case xml.CharData:
			if len(t) == 0 {
				continue
			}
			inText := len(open) > 0 && strings.HasPrefix(open[len(open)-1], textNamespace)
			if !inText && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if err := h.Text(string(t)); err != nil {
				return err
			}
		}
	}
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// DecodeODS reads an ODS archive and forwards the events of its content.xml to h.
func DecodeODS(ctx context.Context, r io.Reader, h EventHandler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read ODS archive: %w", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to open ODS archive: %w", err)
	}

	content, err := archive.Open(ContentEntry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrContentNotFound
		}
		return fmt.Errorf("failed to open %s: %w", ContentEntry, err)
	}
	defer content.Close()

	return DecodeXML(ctx, content, h)
}

// DecodeXLSX reads an XLSX workbook and forwards each sheet to h as
// table, row, cell and paragraph events.
func DecodeXLSX(ctx context.Context, r io.Reader, h EventHandler) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("failed to open XLSX workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range f.GetSheetList() {
		if err := decodeSheet(ctx, f, sheet, h); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	return nil
}

func decodeSheet(ctx context.Context, f *excelize.File, sheet string, h EventHandler) error {
	rows, err := f.Rows(sheet)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	if err := h.StartElement(TagTable, map[string]string{AttrTableName: sheet}); err != nil {
		return err
	}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("decoding interrupted: %w", err)
		}
		values, err := rows.Columns()
		if err != nil {
			return err
		}
		if err := emitRow(h, values); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return err
	}
	return h.EndElement(TagTable)
}

func emitRow(h EventHandler, values []string) error {
	if err := h.StartElement(TagTableRow, nil); err != nil {
		return err
	}
	for _, v := range values {
		if err := h.StartElement(TagTableCell, nil); err != nil {
			return err
		}
		if v != "" {
			if err := h.StartElement(TagParagraph, nil); err != nil {
				return err
			}
			if err := h.Text(v); err != nil {
				return err
			}
			if err := h.EndElement(TagParagraph); err != nil {
				return err
			}
		}
		if err := h.EndElement(TagTableCell); err != nil {
			return err
		}
	}
	return h.EndElement(TagTableRow)
}
