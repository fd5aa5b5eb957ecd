package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pandodao/vault/core"
)

func NewPropertyStore(db *DB) core.PropertyStore {
	return &propertyStore{db: db}
}

type propertyStore struct {
	db *DB
}

func (s *propertyStore) Get(_ context.Context, key string, value any) error {
	s.db.mux.RLock()
	raw, ok := s.db.properties[key]
	s.db.mux.RUnlock()

	if !ok {
		return nil
	}

	return json.Unmarshal(raw, value)
}

func (s *propertyStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	s.db.mux.Lock()
	s.db.properties[key] = raw
	s.db.mux.Unlock()
	return nil
}
