package models

import "github.com/twpayne/go-geom"

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}

// Coord returns the point as an XY go-geom coordinate (longitude first, as in GeoJSON).
func (c Coordinates) Coord() geom.Coord {
	return geom.Coord{c.Longitude, c.Latitude}
}
