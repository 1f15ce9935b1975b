package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Boundary is one polygon of a boundary layer together with its attributes.
// Boundaries are loaded once per run and never mutated.
type Boundary struct {
	Geometry   geom.T         // Geometry is a Polygon, MultiPolygon or nil.
	Properties map[string]any // Properties holds every attribute of the feature.
}

// Attribute returns the named property formatted as text.
// Missing and null properties yield an empty string.
func (b Boundary) Attribute(name string) string {
	value, ok := b.Properties[name]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
