package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// table implements types.Table for the fruits table.
// Each table knows its name and the backend it belongs to (for DB access
// and JSONL writes).
type table struct {
	name    string   // Table name (e.g. "fruits").
	backend *Backend // Parent backend for DB access and JSONL writes.
}

func newTable(b *Backend, name string) *table {
	return &table{name: name, backend: b}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFruit(row rowScanner) (*types.Fruit, error) {
	var f types.Fruit
	var ready int
	var createdAt, updatedAt string
	err := row.Scan(&f.FruitID, &f.Name, &f.Color, &ready, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning fruit: %w", err)
	}
	f.ReadyToEat = ready != 0
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing fruit created_at: %w", err)
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing fruit updated_at: %w", err)
	}
	return &f, nil
}

// Get retrieves a fruit by ID.
// Returns ErrInvalidID if id is empty or not a UUID, ErrNotFound if not found.
func (t *table) Get(ctx context.Context, id string) (*types.Fruit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	row := t.backend.db.QueryRowContext(ctx,
		"SELECT "+fruitColumns+" FROM fruits WHERE fruit_id = ?", id)
	return scanFruit(row)
}

// Set creates a fruit when id is empty, otherwise replaces the mutable
// fields of the existing fruit. Returns the fruit ID.
func (t *table) Set(ctx context.Context, id string, fruit *types.Fruit) (string, error) {
	if fruit == nil {
		return "", types.ErrInvalidData
	}
	if id != "" {
		if err := validateID(id); err != nil {
			return "", err
		}
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return "", types.ErrCupboardDetached
	}

	now := time.Now().UTC()
	if id == "" {
		return t.createFruit(ctx, fruit, now)
	}
	return t.updateFruit(ctx, id, fruit, now)
}

func (t *table) createFruit(ctx context.Context, fruit *types.Fruit, now time.Time) (string, error) {
	fruit.FruitID = generateUUID()
	fruit.CreatedAt = now
	fruit.UpdatedAt = now

	_, err := t.backend.db.ExecContext(ctx,
		"INSERT INTO fruits ("+fruitColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		fruit.FruitID, fruit.Name, fruit.Color, boolToInt(fruit.ReadyToEat),
		formatTime(fruit.CreatedAt), formatTime(fruit.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting fruit: %w", err)
	}

	if err := t.backend.persist(t.name, "save"); err != nil {
		return "", err
	}
	return fruit.FruitID, nil
}

func (t *table) updateFruit(ctx context.Context, id string, fruit *types.Fruit, now time.Time) (string, error) {
	res, err := t.backend.db.ExecContext(ctx, `
		UPDATE fruits SET
			name = ?,
			color = ?,
			ready_to_eat = ?,
			updated_at = ?
		WHERE fruit_id = ?`,
		fruit.Name, fruit.Color, boolToInt(fruit.ReadyToEat), formatTime(now), id)
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
	fruit.UpdatedAt = now

	if err := t.backend.persist(t.name, "save"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a fruit by ID.
// Returns ErrInvalidID if id is empty or not a UUID, ErrNotFound if not found.
func (t *table) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrCupboardDetached
	}

	res, err := t.backend.db.ExecContext(ctx, "DELETE FROM fruits WHERE fruit_id = ?", id)
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

	return t.backend.persist(t.name, "delete")
}

// Fetch returns fruits matching the filter, oldest first. Empty filter matches all.
func (t *table) Fetch(ctx context.Context, filter map[string]any) ([]*types.Fruit, error) {
	f, err := types.ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + fruitColumns + " FROM fruits"
	var conditions []string
	var args []any

	if f.Name != nil {
		conditions = append(conditions, "name = ?")
		args = append(args, *f.Name)
	}
	if f.Color != nil {
		conditions = append(conditions, "color = ?")
		args = append(args, *f.Color)
	}
	if f.ReadyToEat != nil {
		conditions = append(conditions, "ready_to_eat = ?")
		args = append(args, boolToInt(*f.ReadyToEat))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	rows, err := t.backend.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fruits: %w", err)
	}
	defer rows.Close()

	fruits := []*types.Fruit{}
	for rows.Next() {
		fruit, err := scanFruit(rows)
		if err != nil {
			return nil, err
		}
		fruits = append(fruits, fruit)
	}
	return fruits, rows.Err()
}

// Clear removes every fruit.
func (t *table) Clear(ctx context.Context) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrCupboardDetached
	}

	if _, err := t.backend.db.ExecContext(ctx, "DELETE FROM fruits"); err != nil {
		return fmt.Errorf("clearing fruits: %w", err)
	}
	return t.backend.persist(t.name, "delete")
}

// Import inserts fruits in one transaction, generating a new ID for each.
func (t *table) Import(ctx context.Context, fruits []*types.Fruit) ([]string, error) {
	for _, f := range fruits {
		if f == nil {
			return nil, types.ErrInvalidData
		}
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	tx, err := t.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO fruits ("+fruitColumns+") VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(fruits))
	stamps := make([]time.Time, 0, len(fruits))
	for _, f := range fruits {
		now := time.Now().UTC()
		id := generateUUID()
		if _, err := stmt.ExecContext(ctx,
			id, f.Name, f.Color, boolToInt(f.ReadyToEat),
			formatTime(now), formatTime(now)); err != nil {
			return nil, fmt.Errorf("importing fruit %q: %w", f.Name, err)
		}
		ids = append(ids, id)
		stamps = append(stamps, now)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	for i, f := range fruits {
		f.FruitID = ids[i]
		f.CreatedAt = stamps[i]
		f.UpdatedAt = stamps[i]
	}

	if err := t.backend.persist(t.name, "save"); err != nil {
		return nil, err
	}
	return ids, nil
}
