// This file implements JSONL loading for startup.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// columnKind says how a JSON value is converted into a SQLite argument.
type columnKind int

const (
	kindString columnKind = iota
	kindBool
)

// jsonlColumn maps a JSON field of a JSONL record to a SQLite column.
type jsonlColumn struct {
	field  string
	column string
	kind   columnKind
	key    bool // records whose key is missing or not a valid ID are skipped
}

// jsonlTableMapping maps JSONL filenames to their SQLite tables and columns.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []jsonlColumn
}{
	{fruitsJSONL, "fruits", []jsonlColumn{
		{"_id", "fruit_id", kindString, true},
		{"name", "name", kindString, false},
		{"color", "color", kindString, false},
		{"readyToEat", "ready_to_eat", kindBool, false},
		{"createdAt", "created_at", kindString, false},
		{"updatedAt", "updated_at", kindString, false},
	}},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts records into
// the corresponding SQLite tables. Loading is transactional: all succeed or
// the database remains empty. Malformed lines and records that violate
// constraints or carry an ID the backend cannot address are skipped; unknown
// fields are ignored.
func loadAllJSONL(ctx context.Context, db *sql.DB, dataDir string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(ctx, tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// mapped fields are read from each record, so fields written by newer
// versions do not cause errors.
func insertRecords(ctx context.Context, tx *sql.Tx, table string, columns []jsonlColumn, records []json.RawMessage) error {
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	paths := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.column
		placeholders[i] = "?"
		paths[i] = c.field
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		values := gjson.GetManyBytes(rec, paths...)
		if !validKeys(columns, values) {
			continue
		}
		args := make([]any, len(columns))
		for i, c := range columns {
			v := values[i]
			if !v.Exists() || v.Type == gjson.Null {
				args[i] = nil
				continue
			}
			switch c.kind {
			case kindBool:
				args[i] = boolToInt(v.Bool())
			default:
				args[i] = v.String()
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			// Skip records that violate constraints (missing id, duplicates).
			continue
		}
	}
	return nil
}

// validKeys reports whether every key column holds a string ID that Get,
// Set and Delete would accept.
func validKeys(columns []jsonlColumn, values []gjson.Result) bool {
	for i, c := range columns {
		if !c.key {
			continue
		}
		v := values[i]
		if v.Type != gjson.String || validateID(v.String()) != nil {
			return false
		}
	}
	return true
}
