// Config loading for the fruits CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/fruits/internal/paths"
	"github.com/mesh-intelligence/fruits/internal/web"
	"github.com/mesh-intelligence/fruits/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "FRUITS"

	cfgKeyBackend         = "backend"
	cfgKeyDataDir         = "data_dir"
	cfgKeyListen          = "listen"
	cfgKeyStrictErrors    = "strict_errors"
	cfgKeyShutdownTimeout = "shutdown_timeout"
	cfgKeyLogLevel        = "log_level"
	cfgKeySyncStrategy    = "sqlite.sync_strategy"
	cfgKeyBatchSize       = "sqlite.batch_size"
	cfgKeyBatchInterval   = "sqlite.batch_interval"
	cfgKeyMongoURI        = "mongo.uri"
	cfgKeyMongoDatabase   = "mongo.database"
	cfgKeyPostgresDSN     = "postgres.dsn"
)

// envKeys are readable from FRUITS_<KEY> with dots replaced by underscores.
// data_dir is left out: FRUITS_DATA_DIR ranks below config.yaml and is
// handled by paths.ResolveDataDir.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyListen,
	cfgKeyStrictErrors,
	cfgKeyShutdownTimeout,
	cfgKeyLogLevel,
	cfgKeySyncStrategy,
	cfgKeyBatchSize,
	cfgKeyBatchInterval,
	cfgKeyMongoURI,
	cfgKeyMongoDatabase,
	cfgKeyPostgresDSN,
}

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# fruits configuration

# Record store: sqlite, mongo, postgres or memory
backend: sqlite

# Data directory for the sqlite backend (optional; overridable by --data-dir)
# data_dir:

# HTTP listen address for "fruits serve"
listen: ":3000"

# Store failures become 404/500 responses. Set false to log and continue.
strict_errors: true

shutdown_timeout: 5s
log_level: info

sqlite:
  sync_strategy: immediate
  # batch_size: 10
  # batch_interval: 5

# mongo:
#   uri: mongodb://localhost:27017
#   database: fruits

# postgres:
#   dsn: postgres://localhost/fruits?sslmode=disable
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyListen, web.DefaultAddr)
	v.SetDefault(cfgKeyStrictErrors, true)
	v.SetDefault(cfgKeyShutdownTimeout, web.DefaultShutdownTimeout)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyMongoURI, types.DefaultMongoURI)
	v.SetDefault(cfgKeyMongoDatabase, types.DefaultMongoDatabase)
	v.SetDefault(cfgKeyPostgresDSN, types.DefaultPostgresDSN)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, userError{fmt.Errorf("read config: %w", err)}
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// storeConfig maps the loaded settings onto a backend Config.
func storeConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy:  v.GetString(cfgKeySyncStrategy),
			BatchSize:     v.GetInt(cfgKeyBatchSize),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		},
		MongoConfig: &types.MongoConfig{
			URI:      v.GetString(cfgKeyMongoURI),
			Database: v.GetString(cfgKeyMongoDatabase),
		},
		PostgresConfig: &types.PostgresConfig{
			DSN: v.GetString(cfgKeyPostgresDSN),
		},
	}
}

// serverOptions maps the loaded settings onto web.Options. listen overrides
// the configured address when non-empty.
func serverOptions(v *viper.Viper, listen string) web.Options {
	addr := v.GetString(cfgKeyListen)
	if listen != "" {
		addr = listen
	}
	return web.Options{
		Addr:            addr,
		Strict:          v.GetBool(cfgKeyStrictErrors),
		ShutdownTimeout: v.GetDuration(cfgKeyShutdownTimeout),
	}
}

// resolveDataDir applies --data-dir > config.yaml data_dir > FRUITS_DATA_DIR
// > $(CWD)/.fruits-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, cfg.GetString(cfgKeyDataDir))
}
