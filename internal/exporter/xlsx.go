package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds exported keys.
const SheetName = "Keys"

// XLSXStreamWriter writes records to a single worksheet row by row.
type XLSXStreamWriter struct {
	path   string
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

// NewXLSXStreamWriter prepares a workbook with one sheet and a bold header
// row. Nothing is written to disk until Close.
func NewXLSXStreamWriter(filePath string, headers []string) (*XLSXStreamWriter, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	stream, err := f.NewStreamWriter(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	// Keys are long; keep them readable without resizing.
	if err := stream.SetColWidth(1, 1, 22); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := stream.SetColWidth(2, 3, 40); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	w := &XLSXStreamWriter{path: filePath, file: f, stream: stream}

	if len(headers) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}

		cells := make([]interface{}, len(headers))
		for i, h := range headers {
			cells[i] = excelize.Cell{StyleID: bold, Value: h}
		}
		if err := w.writeRow(cells); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return w, nil
}

// WriteRecord appends a row of text cells.
func (w *XLSXStreamWriter) WriteRecord(record []string) error {
	cells := make([]interface{}, len(record))
	for i, v := range record {
		cells[i] = v
	}
	return w.writeRow(cells)
}

func (w *XLSXStreamWriter) writeRow(cells []interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", w.row, err)
	}
	if err := w.stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.row, err)
	}
	return nil
}

// Close finishes the sheet and saves the workbook.
func (w *XLSXStreamWriter) Close() error {
	defer w.file.Close()

	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// readXLSXRows returns the rows of the first sheet that has any.
func readXLSXRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, nil
}
