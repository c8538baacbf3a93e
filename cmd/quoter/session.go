package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammQuote/internal/config"
	"ammQuote/internal/depeg"
	"ammQuote/internal/model"
	"ammQuote/internal/quote"
	"ammQuote/internal/snapshot"
	"ammQuote/internal/storage"
	"ammQuote/internal/storage/postgres"
)

// session wires one CLI invocation: snapshot, pool handle, depeg cache and
// quote journal.
type session struct {
	cfg     config.QuoteConfig
	logger  *zap.Logger
	pool    *quote.Pool
	quoter  *quote.Quoter
	journal storage.Storage
	pg      *postgres.Store
	cache   depeg.Store
	retry   storage.RetryPolicy
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.Snapshot == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	raw, err := snapshot.Load(cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return nil, err
	}
	if cfg.Now != 0 {
		snap.Now = cfg.Now
	}

	s := &session{
		cfg:     cfg,
		logger:  logger,
		journal: storage.NewJsonlStorage(cfg.Out),
		retry:   storage.RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff},
	}

	if cfg.PGDSN != "" {
		s.pg, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := s.retry.Do(ctx, s.pg.Ping); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := s.pg.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	switch {
	case cfg.DepegCache != "":
		s.cache = &depeg.FileStore{Path: cfg.DepegCache}
	case s.pg != nil:
		s.cache = &depeg.DBStore{Store: s.pg}
	}

	var cached *depeg.State
	if s.cache != nil && snap.Depeg.Enabled() {
		state, ok, err := s.cache.Load(ctx, snap.Address.String())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("load depeg cache: %w", err)
		}
		if ok {
			cached = &state
		}
	}

	s.pool = quote.NewPool(snap.Address, cached, logger)
	s.quoter, err = s.pool.Update(snap)
	if err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("quote session",
		zap.String("pool", snap.Address.String()),
		zap.String("curve", snap.CurveKind.String()),
		zap.Int64("now", snap.Now),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("depeg_cache", cfg.DepegCache),
	)
	return s, nil
}

// emit journals the record, persists the refreshed depeg cache and prints
// the record to stdout.
func (s *session) emit(ctx context.Context, record model.QuoteRecord) error {
	records := []model.QuoteRecord{record}
	if err := s.journal.PutQuoteBatch(records); err != nil {
		return fmt.Errorf("journal quote: %w", err)
	}
	if s.pg != nil {
		err := s.retry.Do(ctx, func(ctx context.Context) error {
			return s.pg.InsertQuotes(ctx, records)
		})
		if err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
	}
	if state, ok := s.pool.Depeg(); ok && s.cache != nil && state.Enabled() {
		if err := s.cache.Save(ctx, s.pool.Address().String(), state); err != nil {
			return fmt.Errorf("save depeg cache: %w", err)
		}
	}

	s.logger.Info("quote complete",
		zap.String("kind", record.Kind),
		zap.String("pool", record.PoolAddress),
		zap.String("path", record.Path),
	)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

func (s *session) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

func (s *session) quotedAt() time.Time {
	return time.Now()
}

// parseAmount accepts base units or, when the input has a decimal point, a
// UI amount scaled by decimals.
func parseAmount(name, input string, decimals uint8) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	if !strings.Contains(input, ".") {
		value, ok := new(big.Int).SetString(input, 10)
		if !ok || value.Sign() < 0 {
			return nil, fmt.Errorf("%s: invalid amount %q", name, input)
		}
		return value, nil
	}
	ui, err := decimal.NewFromString(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	scaled := ui.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%s: %s has more than %d decimals", name, input, decimals)
	}
	if scaled.Sign() < 0 {
		return nil, fmt.Errorf("%s: invalid amount %q", name, input)
	}
	return scaled.BigInt(), nil
}

func parseMint(name, input string) (solana.PublicKey, error) {
	if strings.TrimSpace(input) == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(input))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", name, err)
	}
	return mint, nil
}
