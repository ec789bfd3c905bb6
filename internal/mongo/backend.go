// Package mongo implements the MongoDB storage backend for the fruits record
// store. Documents live in the "fruits" collection with ObjectID identifiers.
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// disconnectTimeout bounds Detach, which has no caller context.
const disconnectTimeout = 5 * time.Second

// Backend implements types.Cupboard on a MongoDB database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *driver.Client
	tables   map[string]*table
}

// NewBackend creates a detached MongoDB backend.
func NewBackend() *Backend {
	return &Backend{tables: make(map[string]*table)}
}

// GetTable returns the table with the given name.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach connects to the server named by config.MongoConfig and verifies it
// answers a ping.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	client, err := driver.Connect(ctx, options.Client().ApplyURI(config.MongoConfig.GetURI()))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(config.MongoConfig.GetDatabase())
	b.client = client
	b.tables[types.TableFruits] = &table{backend: b, coll: db.Collection(types.TableFruits)}
	b.attached = true
	return nil
}

// Detach disconnects the client. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	b.attached = false
	b.tables = make(map[string]*table)
	client := b.client
	b.client = nil
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
