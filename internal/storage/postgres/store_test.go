package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"poolReport/internal/model"
	"poolReport/internal/storage"
)

func TestStorePutReport(t *testing.T) {
	dsn := os.Getenv("POOLREPORT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("POOLREPORT_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	price := 3000.0
	r := storage.Report{
		CapturedAt: time.Now(),
		Rows: []model.ReportRow{{
			Version:     model.VersionV3,
			PoolAddress: "0xtestpool",
			Token0:      "0xusdc",
			Token1:      "0xweth",
			FeeTier:     500,
			Amount0:     1,
			Amount1:     0,
			Ratio:       model.NewRatio(1, 0),
			Token1Price: &price,
		}},
	}
	for i := 0; i < 2; i++ {
		if err := store.PutReport(ctx, r); err != nil {
			t.Fatalf("put report: %v", err)
		}
	}

	var count int
	if err := store.pool.QueryRow(ctx, `SELECT count(*) FROM pool_snapshots WHERE pool_address=$1 AND ratio IS NULL`, "0xtestpool").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected stored row with NULL ratio")
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
