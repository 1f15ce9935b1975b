package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default boundary layer endpoints published by NYC on ArcGIS Online.
const (
	DefaultCouncilSource = "https://services5.arcgis.com/GfwWNkhOj9bNBqoJ/arcgis/rest/services/" +
		"NYC_City_Council_Districts_Water_Included/FeatureServer/0/query"
	DefaultCommunitySource = "https://services5.arcgis.com/GfwWNkhOj9bNBqoJ/arcgis/rest/services/" +
		"NYC_Community_Districts_Water_Included/FeatureServer/0/query"
	DefaultBoroughSource = "https://services5.arcgis.com/GfwWNkhOj9bNBqoJ/arcgis/rest/services/" +
		"NYC_Borough_Boundary_Water_Included/FeatureServer/0/query"
)

const (
	defaultInput  = "/tmp/citibike/docks.csv"
	defaultOutput = "/tmp/citibike/docks_completed.csv"
)

// Config holds the configuration settings for an enrichment run.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Input: Path of the dock CSV to enrich.
// - Output: Path the enriched CSV is written to.
// - ProviderType: Where boundary layers come from (arcgis, file).
// - HTTPTimeout: Timeout of a single boundary layer request.
// - RateLimit: Boundary layer requests per second, zero disables pacing.
// - SpatialIndex: Whether layers are matched through an R-tree prefilter.
// - Workers: The number of concurrent workers persisting districts.
// - DockKey: The dock column that identifies a dock in the database.
// - PushgatewayURL: Prometheus Pushgateway receiving run metrics, empty disables pushing.
// - Layers: Boundary layers in matching order.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env            string         `yaml:"env"`
	Input          string         `yaml:"input"`
	Output         string         `yaml:"output"`
	ProviderType   string         `yaml:"provider_type"`
	HTTPTimeout    time.Duration  `yaml:"http_timeout"`
	RateLimit      int            `yaml:"rate_limit"`
	SpatialIndex   bool           `yaml:"spatial_index"`
	Workers        int            `yaml:"workers"`
	DockKey        string         `yaml:"dock_key"`
	PushgatewayURL string         `yaml:"pushgateway_url"`
	Layers         []LayerConfig  `yaml:"layers"`
	Database       PostgresConfig `yaml:"postgres"`
}

// LayerConfig describes one boundary layer: where it is loaded from, which
// feature attribute is copied and the dock column it is copied into.
type LayerConfig struct {
	Name      string
	Source    string
	Attribute string
	Column    string
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// Enabled reports whether a database host is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// RegisterFlags defines the command line flags MustLoad understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", defaultInput, "dock CSV to enrich")
	fs.StringP("output", "o", defaultOutput, "destination of the enriched CSV")
	fs.String("provider", "arcgis", "boundary provider: arcgis or file")
}

// MustLoad reads the configuration from .env, the environment (EMBELLISH_ prefix),
// an optional embellish.yaml in the working directory and the given flags.
// Flags may be nil. It panics when a value cannot be parsed.
func MustLoad(flags *pflag.FlagSet) *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("embellish")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EMBELLISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("input", defaultInput)
	v.SetDefault("output", defaultOutput)
	v.SetDefault("provider_type", "arcgis")
	v.SetDefault("http_timeout", "60s")
	v.SetDefault("rate_limit", "5")
	v.SetDefault("spatial_index", "true")
	v.SetDefault("workers", "4")
	v.SetDefault("dock_key", "name")
	v.SetDefault("pushgateway_url", "")
	v.SetDefault("council_source", DefaultCouncilSource)
	v.SetDefault("community_source", DefaultCommunitySource)
	v.SetDefault("borough_source", DefaultBoroughSource)
	v.SetDefault("postgres.port", "5432")

	for key, env := range map[string]string{
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.db_name":  "DB_NAME",
	} {
		_ = v.BindEnv(key, env)
	}

	if flags != nil {
		bindFlag(v, flags, "input", "input")
		bindFlag(v, flags, "output", "output")
		bindFlag(v, flags, "provider_type", "provider")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic("failed to read configuration file")
		}
	}

	timeout, err := time.ParseDuration(v.GetString("http_timeout"))
	if err != nil {
		panic("failed to parse http timeout from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("rate_limit"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	spatialIndex, err := strconv.ParseBool(v.GetString("spatial_index"))
	if err != nil {
		panic("failed to parse spatial index switch from configuration, must be a boolean")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	return &Config{
		Env:            v.GetString("env"),
		Input:          v.GetString("input"),
		Output:         v.GetString("output"),
		ProviderType:   v.GetString("provider_type"),
		HTTPTimeout:    timeout,
		RateLimit:      rateLimit,
		SpatialIndex:   spatialIndex,
		Workers:        workers,
		DockKey:        v.GetString("dock_key"),
		PushgatewayURL: v.GetString("pushgateway_url"),
		Layers: []LayerConfig{
			{
				Name:      "council",
				Source:    v.GetString("council_source"),
				Attribute: "CounDist",
				Column:    models.ColumnCouncilDistrict,
			},
			{
				Name:      "community",
				Source:    v.GetString("community_source"),
				Attribute: "BoroCD",
				Column:    models.ColumnCommunityDistrict,
			},
			{
				Name:      "borough",
				Source:    v.GetString("borough_source"),
				Attribute: "BoroName",
				Column:    models.ColumnBorough,
			},
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if flag := flags.Lookup(name); flag != nil {
		_ = v.BindPFlag(key, flag)
	}
}
