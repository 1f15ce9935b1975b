package boundary

import (
	"fmt"
	"log/slog"
	"time"
)

// ProviderType represents the type of boundary provider.
type ProviderType string

const (
	// ProviderTypeArcGIS represents ArcGIS feature-service query endpoints.
	ProviderTypeArcGIS ProviderType = "arcgis"
	// ProviderTypeFile represents local GeoJSON or shapefile layers.
	ProviderTypeFile ProviderType = "file"
)

// ProviderConfig holds configuration for creating a boundary provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	Timeout   time.Duration // HTTP client timeout (used by ArcGIS provider)
	RateLimit int           // Requests per second (used by ArcGIS provider)
	Logger    *slog.Logger  // Logger for the provider
}

// NewProvider creates a boundary provider based on the provided configuration.
//
// Supported provider types:
// - "arcgis": remote feature services queried for GeoJSON (requires a positive timeout)
// - "file": local .geojson/.json or .shp files
//
// Returns an error if the provider type is unsupported or the configuration is invalid.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeArcGIS:
		if config.Timeout <= 0 {
			return nil, fmt.Errorf("timeout must be positive for ArcGIS provider, got %s", config.Timeout)
		}
		return NewArcGISProvider(config.Timeout, config.RateLimit, config.Logger), nil
	case ProviderTypeFile:
		return NewFileProvider(config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}
