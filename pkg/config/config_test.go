package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg := fromViper(newTestViper())

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20, cfg.Engine.DefaultSizeLimit)
	assert.Equal(t, 5*time.Second, cfg.Engine.LockTimeout)
	assert.False(t, cfg.Cache.OccupancyEnabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.OccupancyTTL)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ENGINE_DEFAULT_SIZE_LIMIT", "12")
	t.Setenv("ENGINE_LOCK_TIMEOUT", "750ms")
	t.Setenv("ENABLE_OCCUPANCY_CACHE", "true")
	t.Setenv("OCCUPANCY_CACHE_TTL", "1m")

	cfg := fromViper(newTestViper())

	assert.Equal(t, 12, cfg.Engine.DefaultSizeLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LockTimeout)
	assert.True(t, cfg.Cache.OccupancyEnabled)
	assert.Equal(t, time.Minute, cfg.Cache.OccupancyTTL)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
