package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev", c.Env)
	require.Equal(t, "5000", c.Port)
	require.Equal(t, DriverMemory, c.StoreDriver)
	require.True(t, c.SeedData)
	require.Equal(t, 10, c.BcryptCost)
	require.Equal(t, 5*time.Second, c.RequestTimeout)
	require.Equal(t, "localhost:6379", c.Redis.Address())
	require.Equal(t, 30*time.Second, c.Cache.TTL)
	require.Equal(t, map[string]bool{"GET": true}, c.Cache.Methods())
	require.False(t, c.Events.Enabled)
	require.Equal(t, "spaceshare.events", c.Events.Exchange)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_HOST", "db")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("EVENTS_ENABLED", "true")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", c.Port)
	require.Equal(t, DriverMySQL, c.StoreDriver)
	require.Equal(t, "db", c.DB.Host)
	require.Equal(t, "cache:6380", c.Redis.Address())
	require.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Cache.Methods())
	require.True(t, c.Events.Enabled)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	require.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoadRequiresDBSettingsForMySQL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "mysql")

	t.Setenv("DB_HOST", " ")
	_, err := Load()
	require.ErrorContains(t, err, "DB_HOST")

	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "")
	_, err = Load()
	require.ErrorContains(t, err, "DB_NAME")
}

func TestLoadIgnoresDBSettingsForMemory(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.NoError(t, err)
}
