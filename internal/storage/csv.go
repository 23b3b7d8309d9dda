package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"poolReport/internal/model"
	"poolReport/internal/report"
)

// CSVWriter writes the report table to a file, replacing any previous content.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) PutReport(_ context.Context, r Report) error {
	if err := ensureDir(w.path); err != nil {
		return err
	}
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteCSV(file, r.Rows); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}

// WriteCSV writes the header row followed by one record per row.
func WriteCSV(out io.Writer, rows []model.ReportRow) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(report.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(report.Record(row)); err != nil {
			return fmt.Errorf("write row %s: %w", row.PoolAddress, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}
