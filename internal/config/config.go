// Package config loads the mysterygraph configuration file.
//
// The file is TOML, looked up at $XDG_CONFIG_HOME/mysterygraph/config.toml
// (or ~/.config/mysterygraph/config.toml) unless --config names another:
//
//	[server]
//	addr = ":8080"
//	read_timeout = "15s"
//
//	[cache]
//	backend = "redis"          # none, file or redis
//	redis_addr = "localhost:6379"
//
//	[storage]
//	backend = "postgres"       # memory, file, mongo or postgres
//	uri = "postgres://mysterygraph@localhost/mysterygraph?sslmode=disable"
//
//	[mqtt]
//	broker = "tcp://localhost:1883"
//
// Environment variables prefixed MYSTERYGRAPH_ override file values.
// Secrets also accept a *_FILE variant pointing at a file with the value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mysterygraph/pkg/cache"
	"github.com/matzehuels/mysterygraph/pkg/notify"
	"github.com/matzehuels/mysterygraph/pkg/storage"
)

const appName = "mysterygraph"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MYSTERYGRAPH_"

// Cache backend names.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	MQTT    MQTTConfig    `toml:"mqtt"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

// CacheConfig selects the render cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// MQTTConfig configures report publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	TopicPrefix string `toml:"topic_prefix"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. An empty path selects DefaultPath,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no file; defaults and environment only
	default:
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MYSTERYGRAPH_* variables.
func (c *Config) ApplyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	secret := func(name string, dst *string) error {
		v, err := ResolveSecret(EnvPrefix + name)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
		return nil
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("STORAGE_DATABASE", &c.Storage.Database)
	str("MQTT_BROKER", &c.MQTT.Broker)
	str("MQTT_CLIENT_ID", &c.MQTT.ClientID)
	str("MQTT_USERNAME", &c.MQTT.Username)
	str("MQTT_TOPIC_PREFIX", &c.MQTT.TopicPrefix)

	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Cache.RedisDB = db
	}

	for name, dst := range map[string]*string{
		"REDIS_PASSWORD": &c.Cache.RedisPassword,
		"STORAGE_URI":    &c.Storage.URI,
		"MQTT_PASSWORD":  &c.MQTT.Password,
	} {
		if err := secret(name, dst); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Prefix == "" {
		c.Cache.Prefix = appName + ":"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendMemory
	}
	if c.Storage.Backend == storage.BackendMongo && c.Storage.Database == "" {
		c.Storage.Database = appName
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = appName
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = notify.DefaultTopicPrefix
	}
}

// Validate checks that the selected backends are known and configured.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache: redis backend needs redis_addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache: unknown backend %q", c.Cache.Backend))
	}

	switch c.Storage.Backend {
	case storage.BackendMemory, storage.BackendFile:
	case storage.BackendMongo, storage.BackendPostgres:
		if c.Storage.URI == "" {
			errs = append(errs, fmt.Errorf("storage: %s backend needs uri", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("storage: unknown backend %q", c.Storage.Backend))
	}

	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server: max_body_bytes must not be negative"))
	}
	if c.MQTT.Broker != "" && !strings.Contains(c.MQTT.Broker, "://") {
		errs = append(errs, fmt.Errorf("mqtt: broker %q needs a scheme such as tcp://", c.MQTT.Broker))
	}
	return errors.Join(errs...)
}

// RedisOptions returns the Redis cache options.
func (c CacheConfig) RedisOptions() cache.RedisOptions {
	return cache.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Prefix:   c.Prefix,
	}
}

// Options returns the storage backend options.
func (c StorageConfig) Options() storage.Options {
	return storage.Options{
		Backend:  c.Backend,
		Dir:      c.Dir,
		URI:      c.URI,
		Database: c.Database,
	}
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// Options returns the MQTT publisher options.
func (c MQTTConfig) Options() notify.MQTTOptions {
	return notify.MQTTOptions{
		BrokerURL:   c.Broker,
		ClientID:    c.ClientID,
		Username:    c.Username,
		Password:    c.Password,
		TopicPrefix: c.TopicPrefix,
	}
}
