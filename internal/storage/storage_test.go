package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"poolReport/internal/model"
)

func ptr(v float64) *float64 { return &v }

func testRows() []model.ReportRow {
	return []model.ReportRow{
		{
			Version:     model.VersionV2,
			PoolAddress: "0xpair",
			Token0:      "0xusdc",
			Token1:      "0xweth",
			FeeTier:     3000,
			Amount0:     45000000,
			Amount1:     15000,
			Token0TVL:   ptr(45000000),
			Token1TVL:   ptr(45000000),
			Ratio:       model.NewRatio(45000000, 15000),
			Token0Price: ptr(1),
			Token1Price: ptr(3000),
		},
		{
			Version:     model.VersionV3,
			PoolAddress: "0xpool",
			Token0:      "0xusdc",
			Token1:      "0xweth",
			FeeTier:     500,
			Amount0:     12.5,
			Amount1:     0,
			Ratio:       model.NewRatio(12.5, 0),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testRows()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "version number" || records[0][9] != "token0/token1" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][9] != "3000" || records[1][11] != "3000" {
		t.Fatalf("unexpected v2 row %v", records[1])
	}
	if records[2][9] != model.RatioUnavailable || records[2][7] != "" || records[2][10] != "" {
		t.Fatalf("unexpected v3 row %v", records[2])
	}
}

func TestCSVWriterReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	w := NewCSVWriter(path)

	for i := 0; i < 2; i++ {
		if err := w.PutReport(context.Background(), Report{Rows: testRows()}); err != nil {
			t.Fatalf("put report: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected report to be rewritten, got %d records", len(records))
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")
	s := NewJsonlStorage(path)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := s.PutReport(context.Background(), Report{CapturedAt: at, Rows: testRows()}); err != nil {
			t.Fatalf("put report: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		lines = append(lines, obj)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0]["captured_at"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected captured_at %v", lines[0]["captured_at"])
	}
	if lines[0]["pool_address"] != "0xpair" || lines[0]["token0_token1"] != float64(3000) {
		t.Fatalf("unexpected first line %v", lines[0])
	}
	if lines[1]["token0_token1"] != model.RatioUnavailable || lines[1]["token0_tvl"] != nil {
		t.Fatalf("unexpected second line %v", lines[1])
	}
}

func TestJsonlStorageSkipsEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")
	if err := NewJsonlStorage(path).PutReport(context.Background(), Report{}); err != nil {
		t.Fatalf("put report: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty report")
	}
}

type recordingSink struct {
	calls int
	err   error
}

func (s *recordingSink) PutReport(context.Context, Report) error {
	s.calls++
	return s.err
}

func TestMultiStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingSink{}
	second := &recordingSink{err: boom}
	third := &recordingSink{}

	err := Multi{first, second, third}.PutReport(context.Background(), Report{Rows: testRows()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Fatalf("unexpected calls %d %d %d", first.calls, second.calls, third.calls)
	}
}
