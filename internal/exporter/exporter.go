package exporter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"licensekey/internal/batch"
)

// Columns is the header row of every export.
var Columns = []string{"seed", "identity", "key"}

var ErrUnsupportedFormat = errors.New("unsupported export format")

// recordWriter is satisfied by both stream writers.
type recordWriter interface {
	WriteRecord(record []string) error
	Close() error
}

// Record converts an issued key to an export row.
func Record(is batch.Issued) []string {
	return []string{formatSeed(is.Seed), is.Identity, is.Text}
}

// Export writes issued keys to filePath in the format its extension names.
func Export(filePath string, issued []batch.Issued) error {
	var (
		w   recordWriter
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".csv":
		w, err = NewCSVStreamWriter(filePath, Columns)
	case ".xlsx":
		w, err = NewXLSXStreamWriter(filePath, Columns)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return err
	}

	for i, is := range issued {
		if err := w.WriteRecord(Record(is)); err != nil {
			w.Close()
			return fmt.Errorf("failed to write key %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	slog.Info("Exported license keys",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(issued)))
	return nil
}

// AppendCSV adds issued keys to a CSV export, creating it with a header
// row when it does not exist yet.
func AppendCSV(filePath string, issued []batch.Issued) error {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".csv" {
		return fmt.Errorf("%w: only .csv files can be appended to, got %q", ErrUnsupportedFormat, ext)
	}

	records := make([][]string, len(issued))
	for i, is := range issued {
		records[i] = Record(is)
	}

	return WriteCSV(filePath, WriteOptions{
		Headers:   Columns,
		Records:   records,
		Append:    true,
		BOMPrefix: true,
	})
}

// ReadIdentities returns the identities listed in filePath, one per line
// for plain text or one per row for .csv and .xlsx files. When the first row
// has an "identity" header that column is used, so an earlier export can be
// fed back in; otherwise the first column is. Blank entries are skipped.
func ReadIdentities(filePath string) ([]string, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		rows, err = readXLSXRows(filePath)
	case ".csv":
		rows, err = readCSVRows(filePath)
	default:
		rows, err = readLines(filePath)
	}
	if err != nil {
		return nil, err
	}

	col := 0
	if len(rows) > 0 {
		for i, cell := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(cell), "identity") {
				col = i
				rows = rows[1:]
				break
			}
		}
	}

	identities := make([]string, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[col]); v != "" {
			identities = append(identities, v)
		}
	}
	return identities, nil
}

func readCSVRows(filePath string) ([][]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func readLines(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var rows [][]string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rows = append(rows, []string{scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return rows, nil
}
