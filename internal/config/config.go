package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Addr     string
	LogLevel string
	LogJSON  bool

	StoreDriver   string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	// JWTSecret verifies player tokens. Empty means players identify
	// themselves with a plain query parameter, for local development only.
	JWTSecret string

	CheckpointEveryTricks int
	CheckpointTimeout     time.Duration
	WSOrigins             []string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	c := &Config{
		Addr:                  orDefault(getenv("APP_ADDR"), ":8080"),
		LogLevel:              orDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:               getenv("LOG_JSON") == "true",
		StoreDriver:           orDefault(getenv("STORE_DRIVER"), DriverMemory),
		DatabaseURL:           getenv("DATABASE_URL"),
		RedisAddr:             getenv("REDIS_ADDR"),
		RedisPassword:         getenv("REDIS_PASSWORD"),
		JWTSecret:             getenv("JWT_SECRET"),
		CheckpointEveryTricks: 3,
		CheckpointTimeout:     5 * time.Second,
	}

	var err error
	if c.RedisDB, err = intVar(getenv, "REDIS_DB", 0); err != nil {
		return nil, err
	}
	if c.CheckpointEveryTricks, err = intVar(getenv, "CHECKPOINT_EVERY_TRICKS", c.CheckpointEveryTricks); err != nil {
		return nil, err
	}
	if c.SnapshotTTL, err = durationVar(getenv, "SNAPSHOT_TTL", 0); err != nil {
		return nil, err
	}
	if c.CheckpointTimeout, err = durationVar(getenv, "CHECKPOINT_TIMEOUT", c.CheckpointTimeout); err != nil {
		return nil, err
	}
	if v := getenv("WS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.WSOrigins = append(c.WSOrigins, o)
			}
		}
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: DATABASE_URL is not set", ErrInvalid)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return nil, fmt.Errorf("%w: REDIS_ADDR is not set", ErrInvalid)
		}
	default:
		return nil, fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalid, c.StoreDriver)
	}
	if c.CheckpointEveryTricks < 1 {
		return nil, fmt.Errorf("%w: CHECKPOINT_EVERY_TRICKS must be positive", ErrInvalid)
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return n, nil
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return d, nil
}
