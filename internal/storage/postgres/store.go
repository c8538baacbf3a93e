package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammQuote/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	pool_address TEXT NOT NULL,
	curve TEXT NOT NULL,
	path TEXT,
	in_mint TEXT,
	out_mint TEXT,
	in_amount NUMERIC,
	out_amount NUMERIC,
	min_out_amount NUMERIC,
	fee NUMERIC,
	price_impact TEXT,
	price_impact_pct NUMERIC,
	pool_token_amount NUMERIC,
	min_pool_token_amount NUMERIC,
	token_a_amount NUMERIC,
	token_b_amount NUMERIC,
	min_token_a_amount NUMERIC,
	min_token_b_amount NUMERIC,
	slippage_bps INTEGER NOT NULL,
	snapshot_ts BIGINT NOT NULL,
	quoted_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS depeg_cache (
	pool_address TEXT PRIMARY KEY,
	depeg_type TEXT NOT NULL,
	base_virtual_price NUMERIC NOT NULL,
	base_cache_updated_at BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for the quote journal and depeg caches.
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

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the tables used by the store when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// InsertQuotes appends quote records to the journal table.
func (s *Store) InsertQuotes(ctx context.Context, records []model.QuoteRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, r := range records {
		quotedAt, err := time.Parse(time.RFC3339, r.QuotedAt)
		if err != nil {
			return fmt.Errorf("quote %d quoted_at: %w", i, err)
		}
		batch.Queue(`
			INSERT INTO quotes (
				kind, pool_address, curve, path, in_mint, out_mint,
				in_amount, out_amount, min_out_amount, fee, price_impact, price_impact_pct,
				pool_token_amount, min_pool_token_amount, token_a_amount, token_b_amount,
				min_token_a_amount, min_token_b_amount, slippage_bps, snapshot_ts, quoted_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		`,
			r.Kind,
			r.PoolAddress,
			r.Curve,
			nullable(r.Path),
			nullable(r.InMint),
			nullable(r.OutMint),
			nullable(r.InAmount),
			nullable(r.OutAmount),
			nullable(r.MinOutAmount),
			nullable(r.Fee),
			nullable(r.PriceImpact),
			nullable(r.PriceImpactPct),
			nullable(r.PoolTokenAmount),
			nullable(r.MinPoolToken),
			nullable(r.TokenAAmount),
			nullable(r.TokenBAmount),
			nullable(r.MinTokenAAmount),
			nullable(r.MinTokenBAmount),
			int32(r.SlippageBps),
			r.SnapshotTime,
			quotedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert quote %d: %w", i, err)
		}
	}
	return nil
}

// LoadDepegCache returns the persisted depeg cache of a pool.
func (s *Store) LoadDepegCache(ctx context.Context, poolAddress string) (model.DepegCacheRecord, bool, error) {
	if poolAddress == "" {
		return model.DepegCacheRecord{}, false, fmt.Errorf("pool address required")
	}
	rec := model.DepegCacheRecord{PoolAddress: poolAddress}
	row := s.pool.QueryRow(ctx, `
		SELECT depeg_type, base_virtual_price::text, base_cache_updated_at
		FROM depeg_cache WHERE pool_address=$1
	`, poolAddress)
	if err := row.Scan(&rec.Type, &rec.BaseVirtualPrice, &rec.BaseCacheUpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DepegCacheRecord{}, false, nil
		}
		return model.DepegCacheRecord{}, false, err
	}
	return rec, true, nil
}

// SaveDepegCache upserts a pool's depeg cache. An older cache never
// overwrites a newer one.
func (s *Store) SaveDepegCache(ctx context.Context, rec model.DepegCacheRecord) error {
	if rec.PoolAddress == "" {
		return fmt.Errorf("pool address required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO depeg_cache (pool_address, depeg_type, base_virtual_price, base_cache_updated_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, now())
		ON CONFLICT (pool_address) DO UPDATE
		SET depeg_type = EXCLUDED.depeg_type,
			base_virtual_price = EXCLUDED.base_virtual_price,
			base_cache_updated_at = EXCLUDED.base_cache_updated_at,
			updated_at = now()
		WHERE depeg_cache.base_cache_updated_at <= EXCLUDED.base_cache_updated_at
	`, rec.PoolAddress, rec.Type, rec.BaseVirtualPrice, rec.BaseCacheUpdatedAt)
	return err
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
