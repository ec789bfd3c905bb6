// Package memory implements an in-memory Cupboard. Intended for tests and
// throwaway demo servers; nothing survives Detach.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// Backend implements types.Cupboard backed by process memory.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	fruits   map[string]*types.Fruit
	order    []string // insertion order of live ids
	table    *table
}

// NewBackend returns a detached in-memory backend.
func NewBackend() *Backend {
	b := &Backend{}
	b.table = &table{backend: b}
	return b
}

// GetTable returns the fruits table.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	if name != types.TableFruits {
		return nil, types.ErrTableNotFound
	}
	return b.table, nil
}

// Attach validates config and starts with an empty collection.
func (b *Backend) Attach(_ context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	b.fruits = make(map[string]*types.Fruit)
	b.order = nil
	b.attached = true
	return nil
}

// Detach drops all data. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	b.fruits = nil
	b.order = nil
	return nil
}

type table struct {
	backend *Backend
}

func validateID(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", types.ErrInvalidID, id)
	}
	return nil
}

func (t *table) Get(_ context.Context, id string) (*types.Fruit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	f, ok := b.fruits[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return f.Clone(), nil
}

func (t *table) Set(_ context.Context, id string, fruit *types.Fruit) (string, error) {
	if fruit == nil {
		return "", types.ErrInvalidData
	}
	if id != "" {
		if err := validateID(id); err != nil {
			return "", err
		}
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrCupboardDetached
	}

	now := time.Now().UTC()
	if id == "" {
		b.insertLocked(fruit, now)
		return fruit.FruitID, nil
	}

	cur, ok := b.fruits[id]
	if !ok {
		return "", types.ErrNotFound
	}
	cur.Name = fruit.Name
	cur.Color = fruit.Color
	cur.ReadyToEat = fruit.ReadyToEat
	cur.UpdatedAt = now
	fruit.FruitID = id
	fruit.CreatedAt = cur.CreatedAt
	fruit.UpdatedAt = now
	return id, nil
}

// insertLocked stores a copy of fruit under a new id. The caller must hold b.mu.
func (b *Backend) insertLocked(fruit *types.Fruit, now time.Time) {
	fruit.FruitID = uuid.Must(uuid.NewV7()).String()
	fruit.CreatedAt = now
	fruit.UpdatedAt = now
	b.fruits[fruit.FruitID] = fruit.Clone()
	b.order = append(b.order, fruit.FruitID)
}

func (t *table) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrCupboardDetached
	}
	if _, ok := b.fruits[id]; !ok {
		return types.ErrNotFound
	}
	delete(b.fruits, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *table) Fetch(_ context.Context, filter map[string]any) ([]*types.Fruit, error) {
	f, err := types.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	out := []*types.Fruit{}
	for _, id := range b.order {
		fruit := b.fruits[id]
		if f.Match(fruit) {
			out = append(out, fruit.Clone())
		}
	}
	return out, nil
}

func (t *table) Clear(_ context.Context) error {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrCupboardDetached
	}
	b.fruits = make(map[string]*types.Fruit)
	b.order = nil
	return nil
}

func (t *table) Import(_ context.Context, fruits []*types.Fruit) ([]string, error) {
	for _, f := range fruits {
		if f == nil {
			return nil, types.ErrInvalidData
		}
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	ids := make([]string, 0, len(fruits))
	now := time.Now().UTC()
	for _, f := range fruits {
		b.insertLocked(f, now)
		ids = append(ids, f.FruitID)
	}
	return ids, nil
}
