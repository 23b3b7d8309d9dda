package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"poolReport/internal/model"
)

// jsonlRecord is one report row stamped with its capture time.
type jsonlRecord struct {
	CapturedAt time.Time `json:"captured_at"`
	model.ReportRow
}

// JsonlStorage appends report rows to a JSONL file, one object per pool.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

func (s *JsonlStorage) PutReport(_ context.Context, r Report) error {
	if len(r.Rows) == 0 {
		return nil
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	capturedAt := r.CapturedAt.UTC()
	writer := bufio.NewWriter(file)
	for _, row := range r.Rows {
		line, err := json.Marshal(jsonlRecord{CapturedAt: capturedAt, ReportRow: row})
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
