package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrBadEncoding       = errors.New("file could not be decoded with any known encoding")
)

// Row is one data row keyed by header name. Missing cells map to "".
type Row map[string]string

// Get returns the trimmed value for the given column.
func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// ReadFile loads a registrar export into rows, dispatching on extension.
// Supported: .csv, .xlsx, .xls.
func ReadFile(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeWithFallback tries utf-8-sig, utf-8, iso-8859-1 and cp1252 in that
// order, mirroring the encodings the registrar has shipped files in.
func decodeWithFallback(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) && utf8.Valid(data) {
		return string(data[len(utf8BOM):]), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, _, err := transform.Bytes(cm.NewDecoder(), data)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", ErrBadEncoding
}

// findHeaderLine locates the header row by scanning for the literal
// "Período lectivo" marker (accented or not). Falls back to line 0.
func findHeaderLine(lines []string) int {
	for i, line := range lines {
		if strings.Contains(line, "Período lectivo") || strings.Contains(line, "Periodo lectivo") {
			return i
		}
	}
	return 0
}

func readCSV(path string) ([]Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := decodeWithFallback(raw)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	headerIdx := findHeaderLine(lines)

	// Comma is the production delimiter. The upstream exporter also emits
	// semicolons inside cells, which is why no delimiter sniffing happens here.
	r := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	r.Comma = ','
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func readXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func readXLS(path string) ([]Row, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow == 0 {
		return nil, nil
	}

	headerRow := sheet.Row(0)
	if headerRow == nil {
		return nil, nil
	}
	var header []string
	for col := 0; col <= headerRow.LastCol(); col++ {
		header = append(header, strings.TrimSpace(headerRow.Col(col)))
	}

	var rows []Row
	for i := 1; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		record := make([]string, 0, len(header))
		for col := 0; col <= row.LastCol(); col++ {
			record = append(record, row.Col(col))
		}
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func zipRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}
