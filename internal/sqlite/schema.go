// Schema for the SQLite query cache.
package sqlite

// Schema DDL for the fruits table.
const (
	createFruits = `CREATE TABLE fruits (
    fruit_id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL,
    ready_to_eat INTEGER NOT NULL CHECK (ready_to_eat IN (0, 1)),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxFruitsColor   = `CREATE INDEX idx_fruits_color ON fruits(color);`
	idxFruitsCreated = `CREATE INDEX idx_fruits_created ON fruits(created_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createFruits,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxFruitsColor,
	idxFruitsCreated,
}

// fruitColumns is the column order used by every SELECT on fruits.
const fruitColumns = "fruit_id, name, color, ready_to_eat, created_at, updated_at"
