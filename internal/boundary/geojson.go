package boundary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Errors returned while decoding GeoJSON boundary layers.
var (
	ErrNotFeatureCollection = errors.New("document is not a GeoJSON FeatureCollection")
	ErrUnsupportedGeometry  = errors.New("boundary geometry is not polygonal")
	ErrServiceError         = errors.New("feature service returned an error")
)

// featureCollection is the envelope of a GeoJSON document. Geometries stay raw
// until decoded by go-geom; the error member is what ArcGIS sends instead of features.
type featureCollection struct {
	Type       string          `json:"type"`
	Features   []feature       `json:"features"`
	Properties map[string]any  `json:"properties"`
	Error      *serviceFailure `json:"error"`
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type serviceFailure struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// Collection is a decoded boundary layer.
type Collection struct {
	Boundaries []models.Boundary
	// Truncated is set when the service reports more records than it returned.
	Truncated bool
}

// DecodeFeatureCollection reads a GeoJSON FeatureCollection of polygonal features.
// Properties keep numeric values as json.Number so district codes are not reformatted.
// A feature with a null geometry is kept and never matches a point.
func DecodeFeatureCollection(r io.Reader) (*Collection, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var doc featureCollection
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON: %w", err)
	}

	if doc.Error != nil {
		return nil, fmt.Errorf("%w: code %d: %s", ErrServiceError, doc.Error.Code, doc.Error.Message)
	}

	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, doc.Type)
	}

	collection := &Collection{Boundaries: make([]models.Boundary, 0, len(doc.Features))}
	if truncated, ok := doc.Properties["exceededTransferLimit"].(bool); ok {
		collection.Truncated = truncated
	}

	for i, f := range doc.Features {
		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		collection.Boundaries = append(collection.Boundaries, models.Boundary{Geometry: g, Properties: props})
	}

	return collection, nil
}

func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}

	if !isPolygonal(g) {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}

	return g, nil
}

func isPolygonal(g geom.T) bool {
	switch g := g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return true
	case *geom.GeometryCollection:
		for _, child := range g.Geoms() {
			if !isPolygonal(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
