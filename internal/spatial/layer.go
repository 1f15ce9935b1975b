package spatial

import (
	"errors"
	"math"
	"slices"

	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/dhconnelly/rtreego"
	"github.com/twpayne/go-geom"
)

// rtree branching factors and the padding applied to every indexed rectangle.
// The padding keeps points that sit exactly on a bounding box edge inside the
// candidate set, since rtreego treats touching rectangles as disjoint.
const (
	minBranch  = 25
	maxBranch  = 50
	rectMargin = 1e-9
)

var errNonFiniteBounds = errors.New("bounds are not finite")

// Layer is a boundary collection matched against dock points.
type Layer struct {
	Name      string // Name identifies the layer in logs and metrics.
	Attribute string // Attribute is the boundary property returned on a match.

	boundaries []models.Boundary
	bounds     []*geom.Bounds
	tree       *rtreego.Rtree
}

// indexedBoundary is the rtree entry for the boundary at position idx.
type indexedBoundary struct {
	idx  int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (b *indexedBoundary) Bounds() rtreego.Rect {
	return b.rect
}

// NewLayer builds a matcher over boundaries kept in the given order.
// When indexed is true a bounding-box rtree narrows the candidates before the exact test.
func NewLayer(name, attribute string, boundaries []models.Boundary, indexed bool) *Layer {
	layer := &Layer{
		Name:       name,
		Attribute:  attribute,
		boundaries: boundaries,
		bounds:     make([]*geom.Bounds, len(boundaries)),
	}

	for i, boundary := range boundaries {
		if boundary.Geometry == nil {
			continue
		}
		b := boundary.Geometry.Bounds()
		if b.IsEmpty() {
			continue
		}
		layer.bounds[i] = b
	}

	if indexed {
		layer.tree = rtreego.NewTree(2, minBranch, maxBranch)
		for i, b := range layer.bounds {
			if b == nil {
				continue
			}
			rect, err := paddedRect(b.Min(0), b.Min(1), b.Max(0), b.Max(1))
			if err != nil {
				continue
			}
			layer.tree.Insert(&indexedBoundary{idx: i, rect: rect})
		}
	}

	return layer
}

// Len returns the number of boundaries in the layer.
func (l *Layer) Len() int {
	return len(l.boundaries)
}

// Match returns the attribute of the first boundary, in load order, that intersects
// the point. It returns an empty string when no boundary does or when a
// coordinate is NaN or infinite.
func (l *Layer) Match(coords models.Coordinates) string {
	if !isFinite(coords.Longitude) || !isFinite(coords.Latitude) {
		return ""
	}
	point := coords.Coord()

	for _, idx := range l.candidates(coords) {
		b := l.bounds[idx]
		if b == nil || !b.OverlapsPoint(geom.XY, point) {
			continue
		}
		if Intersects(l.boundaries[idx].Geometry, point) {
			return l.boundaries[idx].Attribute(l.Attribute)
		}
	}

	return ""
}

// candidates lists boundary positions worth an exact test, in ascending order.
func (l *Layer) candidates(coords models.Coordinates) []int {
	if l.tree == nil {
		all := make([]int, len(l.boundaries))
		for i := range all {
			all[i] = i
		}
		return all
	}

	query, err := paddedRect(coords.Longitude, coords.Latitude, coords.Longitude, coords.Latitude)
	if err != nil {
		return nil
	}

	hits := l.tree.SearchIntersect(query)
	idx := make([]int, 0, len(hits))
	for _, hit := range hits {
		if entry, ok := hit.(*indexedBoundary); ok {
			idx = append(idx, entry.idx)
		}
	}
	slices.Sort(idx)

	return idx
}

func paddedRect(minX, minY, maxX, maxY float64) (rtreego.Rect, error) {
	for _, v := range []float64{minX, minY, maxX, maxY} {
		if !isFinite(v) {
			return rtreego.Rect{}, errNonFiniteBounds
		}
	}

	origin := rtreego.Point{minX - rectMargin, minY - rectMargin}
	lengths := []float64{maxX - minX + 2*rectMargin, maxY - minY + 2*rectMargin}

	return rtreego.NewRect(origin, lengths)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
