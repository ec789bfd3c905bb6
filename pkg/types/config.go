package types

import "errors"

// Config holds backend selection and parameters for Cupboard.Attach.
type Config struct {
	Backend        string          `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir        string          `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	SQLiteConfig   *SQLiteConfig   `json:"sqlite,omitempty" yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	MongoConfig    *MongoConfig    `json:"mongo,omitempty" yaml:"mongo,omitempty" mapstructure:"mongo"`
	PostgresConfig *PostgresConfig `json:"postgres,omitempty" yaml:"postgres,omitempty" mapstructure:"postgres"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// SQLite sync strategies control when fruits.jsonl is rewritten.
const (
	SyncImmediate = "immediate" // rewrite after every write (default)
	SyncOnClose   = "on_close"  // rewrite once on Detach
	SyncBatch     = "batch"     // rewrite every BatchSize writes or BatchInterval seconds
)

// Defaults for the SQLite batch strategy.
const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5
)

// Defaults for the network backends.
const (
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDatabase = "fruits"
	DefaultPostgresDSN   = "postgres://localhost/fruits?sslmode=disable"
)

// SQLiteConfig holds SQLite backend options. A nil *SQLiteConfig means defaults.
type SQLiteConfig struct {
	SyncStrategy  string `json:"sync_strategy" yaml:"sync_strategy" mapstructure:"sync_strategy"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval" mapstructure:"batch_interval"` // seconds
}

// GetSyncStrategy returns the configured strategy or SyncImmediate.
func (c *SQLiteConfig) GetSyncStrategy() string {
	if c == nil || c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// GetBatchSize returns the configured batch size or DefaultBatchSize.
func (c *SQLiteConfig) GetBatchSize() int {
	if c == nil || c.BatchSize == 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GetBatchInterval returns the configured batch interval in seconds or
// DefaultBatchInterval.
func (c *SQLiteConfig) GetBatchInterval() int {
	if c == nil || c.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return c.BatchInterval
}

// Validate checks the SQLite options.
func (c *SQLiteConfig) Validate() error {
	if c == nil {
		return nil
	}
	switch c.GetSyncStrategy() {
	case SyncImmediate, SyncOnClose, SyncBatch:
	default:
		return ErrSyncStrategyUnknown
	}
	if c.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if c.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}

// MongoConfig holds MongoDB backend options.
type MongoConfig struct {
	URI      string `json:"uri" yaml:"uri" mapstructure:"uri"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
}

// GetURI returns the configured URI or DefaultMongoURI.
func (c *MongoConfig) GetURI() string {
	if c == nil || c.URI == "" {
		return DefaultMongoURI
	}
	return c.URI
}

// GetDatabase returns the configured database or DefaultMongoDatabase.
func (c *MongoConfig) GetDatabase() string {
	if c == nil || c.Database == "" {
		return DefaultMongoDatabase
	}
	return c.Database
}

// PostgresConfig holds Postgres backend options.
type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// GetDSN returns the configured DSN or DefaultPostgresDSN.
func (c *PostgresConfig) GetDSN() string {
	if c == nil || c.DSN == "" {
		return DefaultPostgresDSN
	}
	return c.DSN
}

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendMongo:    true,
	BackendPostgres: true,
	BackendMemory:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendSQLite {
		return c.SQLiteConfig.Validate()
	}
	return nil
}
