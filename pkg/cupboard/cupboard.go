// Package cupboard exposes the factory for fruits storage backends while
// keeping the implementations internal.
package cupboard

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/fruits/internal/memory"
	"github.com/mesh-intelligence/fruits/internal/mongo"
	"github.com/mesh-intelligence/fruits/internal/postgres"
	"github.com/mesh-intelligence/fruits/internal/sqlite"
	"github.com/mesh-intelligence/fruits/pkg/types"
)

// New creates a detached backend by name. Call Attach with a Config to
// initialize it.
//
// Example:
//
//	cup, err := cupboard.New(types.BackendSQLite)
//	err = cup.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".fruits-db",
//	})
//	defer cup.Detach()
func New(backend string) (types.Cupboard, error) {
	switch backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendMongo:
		return mongo.NewBackend(), nil
	case types.BackendPostgres:
		return postgres.NewBackend(), nil
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

// Open creates the backend named by cfg.Backend and attaches it.
func Open(ctx context.Context, cfg types.Config) (types.Cupboard, error) {
	cup, err := New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if err := cup.Attach(ctx, cfg); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", cfg.Backend, err)
	}
	return cup, nil
}

// Fruits opens cfg and returns the cupboard together with its fruits table.
func Fruits(ctx context.Context, cfg types.Config) (types.Cupboard, types.Table, error) {
	cup, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := cup.GetTable(types.TableFruits)
	if err != nil {
		_ = cup.Detach()
		return nil, nil, err
	}
	return cup, tbl, nil
}
