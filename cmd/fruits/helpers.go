// Shared helpers for fruits CLI commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/fruits/pkg/cupboard"
	"github.com/mesh-intelligence/fruits/pkg/types"
)

// openFruits attaches the configured backend and returns it with the fruits
// table. The caller must Detach the cupboard.
func openFruits(ctx context.Context) (types.Cupboard, types.Table, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cup, tbl, err := cupboard.Fruits(ctx, storeConfig(cfg, dataDir))
	if err != nil {
		if isConfigError(err) {
			return nil, nil, userError{err}
		}
		return nil, nil, err
	}
	return cup, tbl, nil
}

// configErrors are store failures caused by settings in config.yaml.
var configErrors = []error{
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrSyncStrategyUnknown,
	types.ErrBatchSizeInvalid,
	types.ErrBatchIntervalInvalid,
}

func isConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// detach releases the cupboard, logging a failure instead of masking the
// command's own error.
func detach(cup types.Cupboard) {
	if err := cup.Detach(); err != nil {
		logger.Warn("detach failed", zap.Error(err))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
