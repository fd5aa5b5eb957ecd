package property

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store/db"
)

type store struct {
	db *db.DB
}

func New(db *db.DB) core.PropertyStore {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, key string, value any) error {
	stmt, args := s.db.Builder.Select("value").From("properties").Where("name = ?", key).MustSql()

	var raw []byte
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&raw); err == nil {
		return json.Unmarshal(raw, value)
	} else if errors.Is(err, sql.ErrNoRows) {
		return nil
	} else {
		return err
	}
}

func (s *store) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	stmt, args := s.db.Builder.Update("properties").
		Set("value", string(jsonValue)).
		Set("version", sq.Expr("version + 1")).
		Where("name = ?", key).
		MustSql()
	r, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to set property: %w", err)
	}

	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	stmt, args = s.db.Builder.Insert("properties").Columns("name", "value").Values(key, string(jsonValue)).MustSql()
	_, err = s.db.ExecContext(ctx, stmt, args...)
	return err
}
