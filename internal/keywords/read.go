package keywords

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxUploadBytes bounds the size of an uploaded sheet.
const MaxUploadBytes = 10 << 20

// ReadGrid reads the first sheet of an .xlsx workbook or a .csv file into a
// Grid. The format is chosen by the file extension.
func ReadGrid(filename string, r io.Reader) (Grid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	}
	return nil, malformed("unsupported file type %q (upload .xlsx or .csv)", filepath.Ext(filename))
}

func readXLSX(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, malformed("cannot open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, malformed("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("keywords: read sheet %q: %w", sheets[0], err)
	}
	return Grid(rows), nil
}

func readCSV(r io.Reader) (Grid, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("keywords: read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var grid Grid
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("cannot parse csv: %v", err)
		}
		grid = append(grid, rec)
	}
	return grid, nil
}
