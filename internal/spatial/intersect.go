package spatial

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// Intersects reports whether the point lies inside or on the boundary of the geometry.
// A point strictly inside a hole does not intersect; a point on a hole's edge does.
// Geometries other than polygons never intersect.
func Intersects(g geom.T, point geom.Coord) bool {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonIntersects(g, point)
	case *geom.MultiPolygon:
		for i := range g.NumPolygons() {
			if polygonIntersects(g.Polygon(i), point) {
				return true
			}
		}
	case *geom.GeometryCollection:
		for _, child := range g.Geoms() {
			if Intersects(child, point) {
				return true
			}
		}
	}

	return false
}

func polygonIntersects(p *geom.Polygon, point geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}

	layout := p.Layout()
	if !xy.IsPointInRing(layout, point, p.LinearRing(0).FlatCoords()) {
		return false
	}

	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.LocatePointInRing(layout, point, p.LinearRing(i).FlatCoords()) == location.Interior {
			return false
		}
	}

	return true
}
