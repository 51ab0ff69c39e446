package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"
)

// Dataset defines tabular export content. Notes are free-form lines printed
// above the table by formats that support them.
type Dataset struct {
	Title   string
	Notes   []string
	Headers []string
	Rows    []map[string]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption tunes the CSV dialect.
type CSVOption func(*CSVExporter)

// WithDelimiter replaces the field separator, e.g. ';' for spreadsheet
// locales that use a decimal comma.
func WithDelimiter(r rune) CSVOption {
	return func(e *CSVExporter) {
		if r != 0 && r != utf8.RuneError {
			e.comma = r
		}
	}
}

// WithBOM prefixes the output with a UTF-8 byte order mark.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter renders the ranking table. Title and notes are not part of the
// CSV body.
type CSVExporter struct {
	comma rune
	bom   bool
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extension is the file suffix for CSV output.
func (e *CSVExporter) Extension() string { return "csv" }

// Render writes the header row followed by one record per row. Missing
// cells render empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.bom {
		buf.Write(utf8BOM)
	}
	writer := csv.NewWriter(buf)
	writer.Comma = e.comma
	if err := writer.WriteAll(records(data)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func records(data Dataset) [][]string {
	out := make([][]string, 0, len(data.Rows)+1)
	out = append(out, append([]string(nil), data.Headers...))
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		out = append(out, record)
	}
	return out
}
