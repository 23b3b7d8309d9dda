package storage

import (
	"context"
	"fmt"
	"time"

	"poolReport/internal/model"
)

// Report is one run's rows, captured at a single point in time.
type Report struct {
	CapturedAt time.Time
	Rows       []model.ReportRow
}

// Sink persists a report.
type Sink interface {
	PutReport(ctx context.Context, report Report) error
}

// Multi writes a report to every sink in order and stops at the first failure.
type Multi []Sink

func (m Multi) PutReport(ctx context.Context, report Report) error {
	for i, sink := range m {
		if err := sink.PutReport(ctx, report); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}
