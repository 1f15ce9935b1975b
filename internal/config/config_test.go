package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/embellish/internal/config"
	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("EMBELLISH_ENV", "local")
	t.Setenv("EMBELLISH_HTTP_TIMEOUT", "10s")
	t.Setenv("EMBELLISH_RATE_LIMIT", "0")
	t.Setenv("EMBELLISH_SPATIAL_INDEX", "false")
	t.Setenv("EMBELLISH_BOROUGH_SOURCE", "testdata/boroughs.shp")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad(nil)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.False(t, cfg.SpatialIndex)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.True(t, cfg.Database.Enabled())

	require.Len(t, cfg.Layers, 3)
	assert.Equal(t, "testdata/boroughs.shp", cfg.Layers[2].Source)
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")

	cfg := config.MustLoad(nil)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/tmp/citibike/docks.csv", cfg.Input)
	assert.Equal(t, "/tmp/citibike/docks_completed.csv", cfg.Output)
	assert.Equal(t, "arcgis", cfg.ProviderType)
	assert.Equal(t, time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.True(t, cfg.SpatialIndex)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "name", cfg.DockKey)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "5432", cfg.Database.Port)

	assert.Equal(t, []config.LayerConfig{
		{Name: "council", Source: config.DefaultCouncilSource, Attribute: "CounDist", Column: models.ColumnCouncilDistrict},
		{Name: "community", Source: config.DefaultCommunitySource, Attribute: "BoroCD", Column: models.ColumnCommunityDistrict},
		{Name: "borough", Source: config.DefaultBoroughSource, Attribute: "BoroName", Column: models.ColumnBorough},
	}, cfg.Layers)
}

func TestMustLoad_Flags(t *testing.T) {
	t.Setenv("EMBELLISH_OUTPUT", "/srv/docks_env.csv")

	fs := pflag.NewFlagSet("embellish", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--input", "stations.csv", "--provider", "file"}))

	cfg := config.MustLoad(fs)

	assert.Equal(t, "stations.csv", cfg.Input)
	assert.Equal(t, "file", cfg.ProviderType)
	assert.Equal(t, "/srv/docks_env.csv", cfg.Output, "unset flags must not shadow the environment")
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("EMBELLISH_HTTP_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse http timeout from configuration", func() {
		config.MustLoad(nil)
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Setenv("EMBELLISH_RATE_LIMIT", "error_value")

	assert.PanicsWithValue(t, "failed to parse rate limit from configuration, must be an integer types", func() {
		config.MustLoad(nil)
	})
}

func TestMustLoad_SpatialIndexError(t *testing.T) {
	t.Setenv("EMBELLISH_SPATIAL_INDEX", "error_value")

	assert.PanicsWithValue(t, "failed to parse spatial index switch from configuration, must be a boolean", func() {
		config.MustLoad(nil)
	})
}

func TestMustLoad_WorkersError(t *testing.T) {
	t.Setenv("EMBELLISH_WORKERS", "error_value")

	assert.PanicsWithValue(t, "failed to parse workers from configuration, must be an integer types", func() {
		config.MustLoad(nil)
	})
}
