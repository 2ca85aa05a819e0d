// Package export writes result lists as CSV, JSON or XLSX downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Saul-Punybz/radar/internal/models"
)

// Format is a download format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat resolves a format name; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, JSON, XLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Translations looks up the cached translation of a result. ResultStore
// satisfies it.
type Translations interface {
	Translation(key string) (string, bool)
}

// Row is one exported result with its translation, if any.
type Row struct {
	models.SearchResult
	Translation string `json:"translation,omitempty"`
}

var header = []string{"id", "platform", "series", "language", "keyword", "content", "translation", "link", "date"}

// Rows pairs results with their cached translations. tr may be nil.
func Rows(results []models.SearchResult, tr Translations) []Row {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i].SearchResult = r
		if tr != nil {
			rows[i].Translation, _ = tr.Translation(r.ID.String())
		}
	}
	return rows
}

// Write encodes rows in format f.
func Write(w io.Writer, f Format, rows []Row) error {
	switch f {
	case JSON:
		return WriteJSON(w, rows)
	case XLSX:
		return WriteXLSX(w, rows)
	}
	return WriteCSV(w, rows)
}

// WriteCSV writes a header and one record per row. A UTF-8 byte order mark
// is emitted first so spreadsheet applications detect Arabic text.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	if err := sw.SetRow("A1", toCells(header)); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, toCells(record(r))); err != nil {
			return fmt.Errorf("export xlsx: row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	return nil
}

func record(r Row) []string {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.UTC().Format(time.RFC3339)
	}
	return []string{
		r.ID.String(),
		string(r.Platform),
		safeCell(r.Series),
		safeCell(r.Language),
		safeCell(r.Keyword),
		safeCell(r.Content),
		safeCell(r.Translation),
		safeCell(r.Link),
		date,
	}
}

// safeCell quotes provider text that a spreadsheet would otherwise
// evaluate as a formula.
func safeCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
