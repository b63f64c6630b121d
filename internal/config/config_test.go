package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, DriverMemory, c.StoreDriver)
	assert.Equal(t, 3, c.CheckpointEveryTricks)
	assert.Equal(t, 5*time.Second, c.CheckpointTimeout)
	assert.Empty(t, c.WSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"STORE_DRIVER":            "redis",
		"REDIS_ADDR":              "localhost:6379",
		"REDIS_DB":                "2",
		"SNAPSHOT_TTL":            "24h",
		"CHECKPOINT_EVERY_TRICKS": "5",
		"WS_ORIGINS":              "localhost:*, example.com",
		"LOG_JSON":                "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, 24*time.Hour, c.SnapshotTTL)
	assert.Equal(t, 5, c.CheckpointEveryTricks)
	assert.Equal(t, []string{"localhost:*", "example.com"}, c.WSOrigins)
	assert.True(t, c.LogJSON)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"STORE_DRIVER": "postgres"},
		"redis without addr":   {"STORE_DRIVER": "redis"},
		"unknown driver":       {"STORE_DRIVER": "mongo"},
		"bad int":              {"REDIS_DB": "two"},
		"bad duration":         {"CHECKPOINT_TIMEOUT": "soon"},
		"zero cadence":         {"CHECKPOINT_EVERY_TRICKS": "0"},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(m))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
