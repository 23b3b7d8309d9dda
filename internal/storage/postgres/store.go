package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolReport/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	captured_at   timestamptz      NOT NULL,
	pool_address  text             NOT NULL,
	version       smallint         NOT NULL,
	token0        text             NOT NULL,
	token1        text             NOT NULL,
	fee_tier      integer          NOT NULL,
	amount0       double precision NOT NULL,
	amount1       double precision NOT NULL,
	token0_tvl    double precision,
	token1_tvl    double precision,
	ratio         double precision,
	token0_price  double precision,
	token1_price  double precision,
	PRIMARY KEY (pool_address, captured_at)
)`

// Store provides Postgres persistence for report snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the pool_snapshots table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create pool_snapshots: %w", err)
	}
	return nil
}

// PutReport upserts every row keyed by pool and capture time.
func (s *Store) PutReport(ctx context.Context, r storage.Report) error {
	if len(r.Rows) == 0 {
		return nil
	}
	capturedAt := r.CapturedAt.UTC()

	batch := &pgx.Batch{}
	for _, row := range r.Rows {
		var ratio *float64
		if row.Ratio.Available {
			v := row.Ratio.Value
			ratio = &v
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				captured_at, pool_address, version, token0, token1, fee_tier,
				amount0, amount1, token0_tvl, token1_tvl, ratio, token0_price, token1_price
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (pool_address, captured_at)
			DO UPDATE SET
				version = EXCLUDED.version,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				fee_tier = EXCLUDED.fee_tier,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				token0_tvl = EXCLUDED.token0_tvl,
				token1_tvl = EXCLUDED.token1_tvl,
				ratio = EXCLUDED.ratio,
				token0_price = EXCLUDED.token0_price,
				token1_price = EXCLUDED.token1_price
		`,
			capturedAt,
			row.PoolAddress,
			int16(row.Version),
			row.Token0,
			row.Token1,
			int32(row.FeeTier),
			row.Amount0,
			row.Amount1,
			row.Token0TVL,
			row.Token1TVL,
			ratio,
			row.Token0Price,
			row.Token1Price,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, row := range r.Rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %s: %w", row.PoolAddress, err)
		}
	}
	return nil
}
