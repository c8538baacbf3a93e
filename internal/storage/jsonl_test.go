package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ammQuote/internal/model"
)

func TestJsonlStorageAppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quotes.jsonl")
	store := NewJsonlStorage(path)

	first := []model.QuoteRecord{
		{Kind: "swap", PoolAddress: "pool", InAmount: "1000000", OutAmount: "69303440577"},
	}
	second := []model.QuoteRecord{
		{Kind: "deposit", PoolAddress: "pool", PoolTokenAmount: "42"},
		{Kind: "withdraw", PoolAddress: "pool", PoolTokenAmount: "42"},
	}
	if err := store.PutQuoteBatch(first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := store.PutQuoteBatch(second); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := store.PutQuoteBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var kinds []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.QuoteRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		kinds = append(kinds, record.Kind)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}

	want := []string{"swap", "deposit", "withdraw"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("line %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}
