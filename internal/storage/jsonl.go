package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ammQuote/internal/model"
)

// JsonlStorage appends quote records to a JSONL journal.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

// NewJsonlStorage creates a journal at path. The file and its directory are
// created on first write.
func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Path returns the journal location.
func (s *JsonlStorage) Path() string {
	return s.path
}

// PutQuoteBatch appends a batch of quote records, one JSON object per line.
func (s *JsonlStorage) PutQuoteBatch(records []model.QuoteRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for i, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("write quote record %d: %w", i, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return file.Sync()
}
