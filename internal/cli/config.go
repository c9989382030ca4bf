package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	badgerstore "github.com/aretw0/patchbay/internal/adapters/badger"
	filestore "github.com/aretw0/patchbay/internal/adapters/file"
	redisstore "github.com/aretw0/patchbay/internal/adapters/redis"
	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/persistence/middleware"
	"github.com/aretw0/patchbay/pkg/ports"
)

// ServeConfig is the YAML configuration consumed by `patchbay serve`
// and `patchbay mcp`. Flags override individual fields.
type ServeConfig struct {
	Listen  string      `yaml:"listen"`
	Metrics bool        `yaml:"metrics"`
	Store   StoreConfig `yaml:"store"`
}

// StoreConfig selects and configures the snapshot store backend.
// A non-empty encryption key wraps the backend so snapshots are
// encrypted at rest; Validate refuses malformed snapshots at the store
// boundary.
type StoreConfig struct {
	Backend  string       `yaml:"backend"` // memory | file | redis | badger
	Dir      string       `yaml:"dir"`     // file backend root
	Validate bool         `yaml:"validate"`
	Redis    RedisConfig  `yaml:"redis"`
	Badger   BadgerConfig `yaml:"badger"`

	EncryptionKey          string   `yaml:"encryptionKey"`          // base64, 32 bytes decoded
	EncryptionFallbackKeys []string `yaml:"encryptionFallbackKeys"` // old keys tried on decrypt
}

// RedisConfig configures the redis snapshot store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      string `yaml:"ttl"` // go duration string, empty means no expiry
}

// BadgerConfig configures the embedded badger snapshot store.
type BadgerConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"inMemory"`
}

// DefaultServeConfig returns the configuration used when no file is given:
// ephemeral desks on :8080 with metrics on.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Listen:  ":8080",
		Metrics: true,
		Store:   StoreConfig{Backend: "memory"},
	}
}

// LoadServeConfig reads a YAML config file over the defaults. An empty
// path returns the defaults untouched.
func LoadServeConfig(path string) (ServeConfig, error) {
	cfg := DefaultServeConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// BuildStore constructs the snapshot store the config names, wrapped in
// the configured middleware. The second return value releases backend
// connections and is non-nil even for backends with nothing to close.
func BuildStore(cfg StoreConfig, logger *slog.Logger) (ports.SnapshotStore, func() error, error) {
	noop := func() error { return nil }

	var store ports.SnapshotStore
	closer := noop

	switch cfg.Backend {
	case "", "memory":
		store = memory.NewStore()

	case "file":
		store = filestore.New(cfg.Dir)

	case "redis":
		addr := cfg.Redis.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		var opts []redisstore.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL != "" {
			ttl, err := time.ParseDuration(cfg.Redis.TTL)
			if err != nil {
				return nil, nil, fmt.Errorf("parse redis ttl: %w", err)
			}
			opts = append(opts, redisstore.WithTTL(ttl))
		}
		s := redisstore.New(addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		store, closer = s, s.Close

	case "badger":
		s, err := badgerstore.New(badgerstore.Options{
			Dir:      cfg.Badger.Dir,
			InMemory: cfg.Badger.InMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		store, closer = s, s.Close

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	store, err := wrapStore(cfg, store)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return store, closer, nil
}

// wrapStore layers the configured store middleware. Encryption sits
// closest to the backend so validation always sees plaintext snapshots.
func wrapStore(cfg StoreConfig, store ports.SnapshotStore) (ports.SnapshotStore, error) {
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decode encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
		}
		fallbacks := make([][]byte, 0, len(cfg.EncryptionFallbackKeys))
		for i, encoded := range cfg.EncryptionFallbackKeys {
			k, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("decode fallback key %d: %w", i, err)
			}
			fallbacks = append(fallbacks, k)
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    key,
			FallbackKeys: fallbacks,
		})(store)
	}

	if cfg.Validate {
		store = middleware.NewValidationMiddleware()(store)
	}
	return store, nil
}
