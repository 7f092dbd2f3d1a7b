package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bustime.org/internal/logging"
)

// ReadCSV parses a delimited city dataset. Ragged rows are accepted; missing
// trailing cells read as empty.
func ReadCSV(city string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(city, nil, nil), nil
		}
		return nil, fmt.Errorf("reading %s header: %w", city, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", city, len(rows)+1, err)
		}
		rows = append(rows, rec)
	}

	return NewTable(city, header, rows), nil
}

// LoadCSV reads a dataset file from disk.
func LoadCSV(city, path string, logger *slog.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s dataset: %w", city, err)
	}
	defer logging.SafeCloseWithLogging(f, logger, "dataset_read")

	return ReadCSV(city, f)
}

// WriteCSV writes a table back out with its header.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
