package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table: строки файла, первая из них заголовок.
type table struct {
	header []string
	rows   [][]string
}

// index ищет колонку по точному имени.
func (t table) index(name string) int {
	for i, h := range t.header {
		if h == name {
			return i
		}
	}
	return -1
}

func (t table) has(names ...string) bool {
	for _, n := range names {
		if t.index(n) < 0 {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isXLSX(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// readTable читает CSV или первую книгу XLSX.
func readTable(r io.Reader, filename string) (table, error) {
	if isXLSX(filename) {
		return readXLSX(r)
	}

	data, err := readText(r)
	if err != nil {
		return table{}, err
	}
	return readCSV(data, ',')
}

func readXLSX(r io.Reader) (table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("чтение листа %s: %w", sheets[0], err)
	}
	return newTable(rows), nil
}

// readText читает текстовый файл в UTF-8: убирает BOM, Windows-1251 перекодирует.
func readText(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("чтение файла: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("перекодирование cp1251: %w", err)
		}
		data = decoded
	}
	return data, nil
}

func readCSV(data []byte, sep rune) (table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("%w: csv: %v", ErrUnsupportedFormat, err)
	}
	return newTable(rows), nil
}

func newTable(rows [][]string) table {
	if len(rows) == 0 {
		return table{}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var body [][]string
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		body = append(body, row)
	}
	return table{header: header, rows: body}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
