package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndEnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("PORT", "9090")
	t.Setenv("AVAILABILITY_CACHE_ENABLED", "true")
	t.Setenv("AVAILABILITY_CACHE_TTL", "45s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Availability.CacheEnabled)
	assert.Equal(t, 45*time.Second, cfg.Availability.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Hour, parseDuration("3h", time.Minute))
}

func TestScheduleLocation(t *testing.T) {
	assert.Equal(t, time.UTC, ScheduleConfig{}.Location())
	assert.Equal(t, time.UTC, ScheduleConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, time.UTC, ScheduleConfig{Timezone: "UTC"}.Location())
}
