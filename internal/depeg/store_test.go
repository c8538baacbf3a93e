package depeg

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &FileStore{Path: filepath.Join(t.TempDir(), "cache", "depeg.json")}

	if _, ok, err := store.Load(ctx, "pool-a"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	a := State{Type: TypeLido, BaseVirtualPrice: big.NewInt(107_500_000), BaseCacheUpdatedAt: 1700000000}
	b := State{Type: TypeMarinade, BaseVirtualPrice: big.NewInt(125_000_000), BaseCacheUpdatedAt: 1700000100}
	if err := store.Save(ctx, "pool-a", a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := store.Save(ctx, "pool-b", b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, ok, err := store.Load(ctx, "pool-a")
	if err != nil || !ok {
		t.Fatalf("load a: ok=%v err=%v", ok, err)
	}
	if !got.Equal(a) {
		t.Fatalf("expected %+v, got %+v", a, got)
	}

	older := State{Type: TypeLido, BaseVirtualPrice: big.NewInt(1), BaseCacheUpdatedAt: 1600000000}
	if err := store.Save(ctx, "pool-a", older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	got, _, err = store.Load(ctx, "pool-a")
	if err != nil {
		t.Fatalf("reload a: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("older cache overwrote newer one: %+v", got)
	}

	got, ok, err = store.Load(ctx, "pool-b")
	if err != nil || !ok || !got.Equal(b) {
		t.Fatalf("load b: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestRecordConversion(t *testing.T) {
	state := State{Type: TypeMarinade, BaseVirtualPrice: big.NewInt(125_000_000), BaseCacheUpdatedAt: 42}
	rec := ToRecord("pool", state, time.Unix(0, 0))
	if rec.Type != "marinade" || rec.BaseVirtualPrice != "125000000" || rec.PoolAddress != "pool" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	back, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if !back.Equal(state) {
		t.Fatalf("expected %+v, got %+v", state, back)
	}

	rec.BaseVirtualPrice = "abc"
	if _, err := FromRecord(rec); err == nil {
		t.Fatalf("expected error for invalid price")
	}
}

func TestNilStoresAreNoops(t *testing.T) {
	ctx := context.Background()
	var file *FileStore
	if _, ok, err := file.Load(ctx, "pool"); ok || err != nil {
		t.Fatalf("nil file store load: ok=%v err=%v", ok, err)
	}
	var db *DBStore
	if err := db.Save(ctx, "pool", State{}); err != nil {
		t.Fatalf("nil db store save: %v", err)
	}
}
