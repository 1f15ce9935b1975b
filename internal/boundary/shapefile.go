package boundary

import (
	"fmt"
	"strings"

	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// ReadShapefile reads every record of a polygon shapefile and its DBF attributes.
// Attribute values are trimmed strings; records without a shape get a nil geometry.
func ReadShapefile(path string) ([]models.Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", path, err)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var boundaries []models.Boundary
	for reader.Next() {
		_, shape := reader.Shape()

		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}

		var g geom.T
		switch s := shape.(type) {
		case *shp.Polygon:
			mp, errConv := polygonToMultiPolygon(s)
			if errConv != nil {
				return nil, fmt.Errorf("shapefile %s record %d: %w", path, len(boundaries), errConv)
			}
			g = mp
		case *shp.Null, nil:
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, shape)
		}

		boundaries = append(boundaries, models.Boundary{Geometry: g, Properties: props})
	}

	if err = reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shapefile %s: %w", path, err)
	}

	return boundaries, nil
}

// polygonToMultiPolygon converts the parts of a shapefile polygon to a MultiPolygon.
// Shapefile shells are clockwise and holes counter-clockwise; a hole is attached
// to the shell that precedes it.
func polygonToMultiPolygon(p *shp.Polygon) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(geom.XY)
	if p.NumParts == 0 || len(p.Points) == 0 {
		return mp, nil
	}

	var current *geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current != nil && xy.IsRingCounterClockwise(geom.XY, flat) {
			if err := current.Push(ring); err != nil {
				return nil, fmt.Errorf("failed to attach hole %d: %w", i, err)
			}
			continue
		}

		if current != nil {
			if err := mp.Push(current); err != nil {
				return nil, fmt.Errorf("failed to add polygon part: %w", err)
			}
		}
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			return nil, fmt.Errorf("failed to add shell %d: %w", i, err)
		}
	}

	if err := mp.Push(current); err != nil {
		return nil, fmt.Errorf("failed to add polygon part: %w", err)
	}

	return mp, nil
}
