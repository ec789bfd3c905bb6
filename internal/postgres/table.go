package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// table implements types.Table on the fruits relation.
type table struct {
	backend *Backend
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFruit(row rowScanner) (*types.Fruit, error) {
	var f types.Fruit
	err := row.Scan(&f.FruitID, &f.Name, &f.Color, &f.ReadyToEat, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = f.UpdatedAt.UTC()
	return &f, nil
}

// now truncates to the column precision so written and read values compare equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (t *table) Get(ctx context.Context, id string) (*types.Fruit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}
	f, err := scanFruit(db.QueryRowContext(ctx, selectFruit, id))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("selecting fruit: %w", err)
	}
	return f, err
}

func (t *table) Set(ctx context.Context, id string, fruit *types.Fruit) (string, error) {
	if fruit == nil {
		return "", types.ErrInvalidData
	}
	db, err := t.backend.handle()
	if err != nil {
		return "", err
	}

	ts := now()
	if id == "" {
		id = generateUUID()
		if _, err := db.ExecContext(ctx, insertFruit, id, fruit.Name, fruit.Color, fruit.ReadyToEat, ts, ts); err != nil {
			return "", fmt.Errorf("inserting fruit: %w", err)
		}
		fruit.FruitID = id
		fruit.CreatedAt = ts
		fruit.UpdatedAt = ts
		return id, nil
	}

	if err := validateID(id); err != nil {
		return "", err
	}
	res, err := db.ExecContext(ctx, updateFruit, fruit.Name, fruit.Color, fruit.ReadyToEat, ts, id)
	if err != nil {
		return "", fmt.Errorf("updating fruit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("updating fruit: %w", err)
	}
	if n == 0 {
		return "", types.ErrNotFound
	}
	fruit.FruitID = id
	fruit.UpdatedAt = ts
	return id, nil
}

func (t *table) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	db, err := t.backend.handle()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, deleteFruit, id)
	if err != nil {
		return fmt.Errorf("deleting fruit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting fruit: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (t *table) Fetch(ctx context.Context, filter map[string]any) ([]*types.Fruit, error) {
	f, err := types.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}

	q, args := buildFetchQuery(f)
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting fruits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	fruits := []*types.Fruit{}
	for rows.Next() {
		fruit, err := scanFruit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fruit: %w", err)
		}
		fruits = append(fruits, fruit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fruits: %w", err)
	}
	return fruits, nil
}

func (t *table) Clear(ctx context.Context) error {
	db, err := t.backend.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, clearFruits); err != nil {
		return fmt.Errorf("clearing fruits: %w", err)
	}
	return nil
}

func (t *table) Import(ctx context.Context, fruits []*types.Fruit) ([]string, error) {
	for _, f := range fruits {
		if f == nil {
			return nil, types.ErrInvalidData
		}
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	ids := make([]string, len(fruits))
	for i, f := range fruits {
		ids[i] = generateUUID()
		if _, err := tx.ExecContext(ctx, insertFruit, ids[i], f.Name, f.Color, f.ReadyToEat, ts, ts); err != nil {
			return nil, fmt.Errorf("importing fruit %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	for i, f := range fruits {
		f.FruitID = ids[i]
		f.CreatedAt = ts
		f.UpdatedAt = ts
	}
	return ids, nil
}
