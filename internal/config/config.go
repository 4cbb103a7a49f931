package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds the configuration settings for the application.
type Config struct {
	Env            string         // Env is the current environment: local, development, production.
	Token          string         // Token is the telegram bot token.
	PollerTimeout  time.Duration  // PollerTimeout is the long polling timeout.
	Database       PostgresConfig // Database holds the postgres connection settings.
	Redis          RedisConfig    // Redis holds the redis connection settings; Addr may be empty.
	Session        SessionConfig  // Session configures conversation storage.
	AllowedUsers   []int64        // AllowedUsers are the telegram ids allowed to use the bot; empty allows everyone.
	PhoneRegion    string         // PhoneRegion is the default region for phone number parsing.
	MonitoringPort int            // MonitoringPort serves /healthz and /metrics.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig configures how conversations are stored and when idle ones expire.
// LockTTL bounds how long a crashed replica can keep a chat locked.
type SessionConfig struct {
	Store   string
	TTL     time.Duration
	LockTTL time.Duration
}

// MustLoad reads the configuration from the environment (and .env), optionally merged over the YAML file
// named by CONFIG_PATH. It panics on invalid configuration.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("METRICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("telegram.timeout", "10s")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.lock_ttl", "30s")
	v.SetDefault("phone_region", "UA")
	v.SetDefault("monitoring.port", 8080) //nolint:mnd // default port

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	timeout := mustDuration(v, "telegram.timeout")
	ttl := mustDuration(v, "session.ttl")
	lockTTL := mustDuration(v, "session.lock_ttl")

	store := v.GetString("session.store")
	if store != SessionStoreMemory && store != SessionStoreRedis {
		panic("unknown session store: " + store)
	}

	allowed, err := parseUserIDs(v.Get("allowed_users"))
	if err != nil {
		panic("failed to parse allowed users: " + err.Error())
	}

	return &Config{
		Env:           v.GetString("env"),
		Token:         v.GetString("telegram.token"),
		PollerTimeout: timeout,
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Store:   store,
			TTL:     ttl,
			LockTTL: lockTTL,
		},
		AllowedUsers:   allowed,
		PhoneRegion:    strings.ToUpper(v.GetString("phone_region")),
		MonitoringPort: v.GetInt("monitoring.port"),
	}
}

func mustDuration(v *viper.Viper, key string) time.Duration {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil || value <= 0 {
		panic("failed to parse interval from configuration")
	}
	return value
}

// parseUserIDs accepts a comma separated string (env) or a list (YAML).
func parseUserIDs(raw any) ([]int64, error) {
	var parts []string
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case string:
		parts = strings.Split(value, ",")
	default:
		parts = cast.ToStringSlice(raw)
	}

	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram id %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
