// Package keywords parses uploaded keyword spreadsheets into an immutable
// (language, series) → keywords table.
//
// The grid contract is fixed: row 0 and column 0 carry the labels, cell
// (0,0) is ignored, and every other cell holds zero or more comma-separated
// keywords. One axis carries language codes and the other carries series
// names. Which axis is which is either given explicitly or detected from the
// language allow-list; ambiguity is an error, never a guess.
package keywords

import (
	"fmt"
	"strings"
)

// Grid is a two-dimensional block of cells as read from a spreadsheet.
// Rows may have different lengths; missing cells read as empty.
type Grid [][]string

func (g Grid) cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

func (g Grid) width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Orientation says which axis of the grid carries language labels.
type Orientation int

const (
	// Auto detects the language axis from the language-code allow-list.
	Auto Orientation = iota
	// LanguagesInRows means column 0 holds languages and row 0 holds series.
	LanguagesInRows
	// LanguagesInColumns means row 0 holds languages and column 0 holds series.
	LanguagesInColumns
)

// String returns the form accepted by ParseOrientation.
func (o Orientation) String() string {
	switch o {
	case LanguagesInRows:
		return "rows"
	case LanguagesInColumns:
		return "columns"
	default:
		return "auto"
	}
}

// ParseOrientation accepts "auto", "rows" or "columns". The empty string
// means Auto.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "rows", "row", "languages-in-rows":
		return LanguagesInRows, nil
	case "columns", "column", "cols", "languages-in-columns":
		return LanguagesInColumns, nil
	}
	return Auto, fmt.Errorf("keywords: unknown orientation %q (want auto, rows or columns)", s)
}

// MalformedTableError reports an upload that does not satisfy the grid
// contract. The message is meant for the end user.
type MalformedTableError struct {
	Reason string
}

func (e *MalformedTableError) Error() string {
	return "malformed keyword table: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedTableError{Reason: fmt.Sprintf(format, args...)}
}

type cellKey struct {
	language string
	series   string
}

// Table is the parsed, immutable keyword mapping.
type Table struct {
	languages   []string
	series      []string
	cells       map[cellKey][]string
	orientation Orientation
}

// label is a header value and the grid index (row or column) it came from.
type label struct {
	value string
	index int
}

// Parse builds a Table from grid. With Auto, the language axis is the one
// whose labels are all known language codes; if both or neither axis
// qualifies, Parse fails with a *MalformedTableError.
func Parse(grid Grid, orientation Orientation) (*Table, error) {
	if len(grid) < 2 || grid.width() < 2 {
		return nil, malformed("need a header row, a header column and at least one keyword cell")
	}

	rowLabels := collectLabels(len(grid), func(i int) string { return grid.cell(i, 0) })
	colLabels := collectLabels(grid.width(), func(i int) string { return grid.cell(0, i) })
	if len(rowLabels) == 0 {
		return nil, malformed("the first column has no labels")
	}
	if len(colLabels) == 0 {
		return nil, malformed("the first row has no labels")
	}

	if orientation == Auto {
		rowsAreLangs := allLanguageCodes(rowLabels)
		colsAreLangs := allLanguageCodes(colLabels)
		switch {
		case rowsAreLangs && !colsAreLangs:
			orientation = LanguagesInRows
		case colsAreLangs && !rowsAreLangs:
			orientation = LanguagesInColumns
		case rowsAreLangs && colsAreLangs:
			return nil, malformed("ambiguous orientation: both the first row and the first column look like language codes; choose the orientation explicitly")
		default:
			return nil, malformed("ambiguous orientation: neither the first row nor the first column contains only language codes (e.g. ar, en, fr); fix the labels or choose the orientation explicitly")
		}
	}

	langLabels, seriesLabels := rowLabels, colLabels
	if orientation == LanguagesInColumns {
		langLabels, seriesLabels = colLabels, rowLabels
	}
	for i := range langLabels {
		langLabels[i].value = strings.ToLower(langLabels[i].value)
	}
	if dup, ok := firstDuplicate(langLabels); ok {
		return nil, malformed("language %q appears more than once", dup)
	}
	if dup, ok := firstDuplicate(seriesLabels); ok {
		return nil, malformed("series %q appears more than once", dup)
	}

	t := &Table{
		languages:   values(langLabels),
		series:      values(seriesLabels),
		cells:       make(map[cellKey][]string, len(langLabels)*len(seriesLabels)),
		orientation: orientation,
	}
	for _, l := range langLabels {
		for _, s := range seriesLabels {
			row, col := l.index, s.index
			if orientation == LanguagesInColumns {
				row, col = s.index, l.index
			}
			if kws := SplitKeywords(grid.cell(row, col)); len(kws) > 0 {
				t.cells[cellKey{l.value, s.value}] = kws
			}
		}
	}
	return t, nil
}

// KeywordsFor returns the keywords for the pair, or an empty slice when
// either label is unknown. The language match is case-insensitive.
func (t *Table) KeywordsFor(language, series string) []string {
	kws := t.cells[cellKey{strings.ToLower(strings.TrimSpace(language)), strings.TrimSpace(series)}]
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Languages returns the language labels in sheet order.
func (t *Table) Languages() []string {
	return append([]string(nil), t.languages...)
}

// Series returns the series labels in sheet order.
func (t *Table) Series() []string {
	return append([]string(nil), t.series...)
}

// Orientation returns the orientation the table was parsed with.
func (t *Table) Orientation() Orientation {
	return t.orientation
}

// HasLanguage reports whether language is a label of the table.
func (t *Table) HasLanguage(language string) bool {
	language = strings.ToLower(strings.TrimSpace(language))
	for _, l := range t.languages {
		if l == language {
			return true
		}
	}
	return false
}

// HasSeries reports whether series is a label of the table.
func (t *Table) HasSeries(series string) bool {
	series = strings.TrimSpace(series)
	for _, s := range t.series {
		if s == series {
			return true
		}
	}
	return false
}

// SplitKeywords splits a cell on ASCII and Arabic commas, trimming tokens
// and dropping empty ones.
func SplitKeywords(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == '،'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// collectLabels reads header values at indexes 1..n-1, skipping blanks.
func collectLabels(n int, at func(int) string) []label {
	var out []label
	for i := 1; i < n; i++ {
		if v := strings.TrimSpace(at(i)); v != "" {
			out = append(out, label{value: v, index: i})
		}
	}
	return out
}

func allLanguageCodes(labels []label) bool {
	for _, l := range labels {
		if !IsLanguageCode(l.value) {
			return false
		}
	}
	return true
}

func firstDuplicate(labels []label) (string, bool) {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l.value] {
			return l.value, true
		}
		seen[l.value] = true
	}
	return "", false
}

func values(labels []label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.value
	}
	return out
}
