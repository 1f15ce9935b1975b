package boundary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/embellish/internal/models"
)

// ErrUnsupportedFormat is returned for layer files that are neither GeoJSON nor shapefiles.
var ErrUnsupportedFormat = errors.New("unsupported boundary file format")

// FileProvider loads boundary layers from local GeoJSON files or ESRI shapefiles.
// It is meant for offline runs and fixtures in place of live feature services.
type FileProvider struct {
	log *slog.Logger
}

// NewFileProvider creates a provider reading layers from the local filesystem.
func NewFileProvider(log *slog.Logger) *FileProvider {
	return &FileProvider{log: log}
}

// Fetch reads the layer at path, choosing the decoder from the file extension.
func (fp *FileProvider) Fetch(ctx context.Context, path string) ([]models.Boundary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fp.log.DebugContext(ctx, "Reading boundary layer", "path", path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return fp.readGeoJSON(path)
	case ".shp":
		return ReadShapefile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func (fp *FileProvider) readGeoJSON(path string) ([]models.Boundary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open boundary file: %w", err)
	}
	defer file.Close()

	collection, err := DecodeFeatureCollection(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if collection.Truncated {
		fp.log.Warn("Boundary file was exported truncated", "path", path)
	}

	return collection.Boundaries, nil
}
