package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is tabular export content. Each row lines up with Headers by
// position.
type Table struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders tables as CSV. Cells that a spreadsheet would treat as
// a formula are prefixed with a quote.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write streams the table to w.
func (e *CSVExporter) Write(w io.Writer, table Table) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(table.Headers))
	for i, row := range table.Rows {
		if len(row) > len(table.Headers) {
			return fmt.Errorf("row %d has %d cells for %d headers", i, len(row), len(table.Headers))
		}
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = escapeFormula(row[j])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Render returns the table as CSV bytes.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Write(buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
