package report

import (
	"sync"

	"poolReport/internal/model"
)

// Aggregator collects report rows in insertion order. It is safe for concurrent use.
type Aggregator struct {
	mu   sync.Mutex
	rows []model.ReportRow
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddSnapshot projects a snapshot into a report row and appends it.
func (a *Aggregator) AddSnapshot(snap model.PoolSnapshot) model.ReportRow {
	row := Project(snap)
	a.mu.Lock()
	a.rows = append(a.rows, row)
	a.mu.Unlock()
	return row
}

// Rows returns a copy of the collected rows.
func (a *Aggregator) Rows() []model.ReportRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.ReportRow, len(a.rows))
	copy(out, a.rows)
	return out
}

// Len returns the number of rows collected so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rows)
}

// Project flattens a snapshot into the report schema.
func Project(snap model.PoolSnapshot) model.ReportRow {
	return model.ReportRow{
		Version:     snap.Version,
		PoolAddress: snap.Address,
		Token0:      snap.Token0.Address,
		Token1:      snap.Token1.Address,
		FeeTier:     snap.FeeTier,
		Amount0:     snap.Amount0,
		Amount1:     snap.Amount1,
		Token0TVL:   snap.Value0USD,
		Token1TVL:   snap.Value1USD,
		Ratio:       snap.Ratio,
		Token0Price: snap.Token0.PriceUSD,
		Token1Price: snap.Token1.PriceUSD,
	}
}
