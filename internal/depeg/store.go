package depeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ammQuote/internal/model"
	"ammQuote/internal/storage/postgres"
)

// Store persists depeg caches between runs, keyed by pool address.
type Store interface {
	Load(ctx context.Context, pool string) (State, bool, error)
	Save(ctx context.Context, pool string, state State) error
}

// FileStore keeps every pool's cache in one local JSON file.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func (s *FileStore) Load(ctx context.Context, pool string) (State, bool, error) {
	if s == nil || s.Path == "" {
		return State{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return State{}, false, err
	}
	rec, ok := records[pool]
	if !ok {
		return State{}, false, nil
	}
	state, err := FromRecord(rec)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (s *FileStore) Save(ctx context.Context, pool string, state State) error {
	if s == nil || s.Path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	if existing, ok := records[pool]; ok && existing.BaseCacheUpdatedAt > state.BaseCacheUpdatedAt {
		return nil
	}
	records[pool] = ToRecord(pool, state, time.Now())

	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create depeg cache dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal depeg cache: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write depeg cache tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename depeg cache: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]model.DepegCacheRecord, error) {
	records := make(map[string]model.DepegCacheRecord)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("read depeg cache: %w", err)
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse depeg cache: %w", err)
	}
	return records, nil
}

// DBStore keeps caches in the depeg_cache table.
type DBStore struct {
	Store *postgres.Store
}

func (s *DBStore) Load(ctx context.Context, pool string) (State, bool, error) {
	if s == nil || s.Store == nil {
		return State{}, false, nil
	}
	rec, ok, err := s.Store.LoadDepegCache(ctx, pool)
	if err != nil || !ok {
		return State{}, ok, err
	}
	state, err := FromRecord(rec)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (s *DBStore) Save(ctx context.Context, pool string, state State) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveDepegCache(ctx, ToRecord(pool, state, time.Now()))
}

// ToRecord converts a cache into its persisted form.
func ToRecord(pool string, state State, now time.Time) model.DepegCacheRecord {
	price := "0"
	if state.BaseVirtualPrice != nil {
		price = state.BaseVirtualPrice.String()
	}
	return model.DepegCacheRecord{
		PoolAddress:        pool,
		Type:               state.Type.String(),
		BaseVirtualPrice:   price,
		BaseCacheUpdatedAt: state.BaseCacheUpdatedAt,
		UpdatedAt:          now.UTC().Format(time.RFC3339Nano),
	}
}

// FromRecord parses a persisted cache.
func FromRecord(rec model.DepegCacheRecord) (State, error) {
	t, err := ParseType(rec.Type)
	if err != nil {
		return State{}, err
	}
	price, ok := new(big.Int).SetString(rec.BaseVirtualPrice, 10)
	if !ok {
		return State{}, fmt.Errorf("invalid base virtual price %q", rec.BaseVirtualPrice)
	}
	return State{Type: t, BaseVirtualPrice: price, BaseCacheUpdatedAt: rec.BaseCacheUpdatedAt}, nil
}
