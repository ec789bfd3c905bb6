package postgres

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// seq breaks created_at ties so Fetch order matches insertion order.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS fruits (
		fruit_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		ready_to_eat BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		seq BIGSERIAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fruits_color ON fruits(color)`,
	`CREATE INDEX IF NOT EXISTS idx_fruits_created_at ON fruits(created_at, seq)`,
}

const (
	fruitColumns = "fruit_id, name, color, ready_to_eat, created_at, updated_at"

	selectFruit = `SELECT ` + fruitColumns + ` FROM fruits WHERE fruit_id = $1`
	insertFruit = `INSERT INTO fruits (` + fruitColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	updateFruit = `UPDATE fruits SET name = $1, color = $2, ready_to_eat = $3, updated_at = $4 WHERE fruit_id = $5`
	deleteFruit = `DELETE FROM fruits WHERE fruit_id = $1`
	clearFruits = `DELETE FROM fruits`
)

// buildFetchQuery returns the select statement and arguments for a filter.
func buildFetchQuery(f types.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(column string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.Color != nil {
		add("color", *f.Color)
	}
	if f.ReadyToEat != nil {
		add("ready_to_eat", *f.ReadyToEat)
	}

	q := `SELECT ` + fruitColumns + ` FROM fruits`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY created_at, seq", args
}
