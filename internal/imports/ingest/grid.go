package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Grid is the first sheet of an upload: rows of trimmed cell text.
// Rows may be ragged; a missing cell reads as "".
type Grid [][]string

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Width is the length of the longest row.
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Format identifies the spreadsheet container of an upload.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// AcceptedContentTypes maps the MIME types accepted for uploads to their format.
var AcceptedContentTypes = map[string]Format{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
	"application/vnd.ms-excel":                                           FormatXLS,
	"text/csv":                                                           FormatCSV,
}

var xlsxMagic = []byte("PK\x03\x04")
var xlsMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// DetectFormat picks the container from the file extension and falls back to
// sniffing the leading bytes, since browsers label .csv as vnd.ms-excel.
func DetectFormat(fileName string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	}

	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, xlsMagic):
		return FormatXLS, nil
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(fileName))
}

// LoadGrid decodes the first sheet of an .xlsx, .xls or .csv upload.
// Decoder failures are reported as ErrUnreadableSheet.
func LoadGrid(data []byte, fileName string) (Grid, error) {
	format, err := DetectFormat(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSheet, err)
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSheet, err)
	}

	grid := make(Grid, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		grid[i] = cells
	}
	return grid, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	return file.GetRows(sheetName)
}

func readXLS(data []byte) (rows [][]string, err error) {
	// the BIFF decoder panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("decode xls: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// readCSV accepts UTF-8 (with or without BOM) and the EUC-KR/CP949 encoding
// that Korean Excel writes by default.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, korean.EUCKR.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows, nil
}
