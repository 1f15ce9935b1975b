package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column names read from and appended to the dock file.
const (
	ColumnLongitude         = "longitude"
	ColumnLatitude          = "latitude"
	ColumnCouncilDistrict   = "councilDistrict"
	ColumnCommunityDistrict = "communityDistrict"
	ColumnBorough           = "borough"
)

// ErrInvalidCoordinates is returned when a dock row has a missing or unparsable coordinate.
var ErrInvalidCoordinates = errors.New("invalid dock coordinates")

// Dock is a single station row keyed by column name.
type Dock map[string]string

// Coordinates parses the longitude and latitude columns of the dock.
func (d Dock) Coordinates() (Coordinates, error) {
	lon, err := parseCoordinate(d, ColumnLongitude)
	if err != nil {
		return Coordinates{}, err
	}

	lat, err := parseCoordinate(d, ColumnLatitude)
	if err != nil {
		return Coordinates{}, err
	}

	return Coordinates{Longitude: lon, Latitude: lat}, nil
}

// Districts returns the boundary assignment columns of the dock.
func (d Dock) Districts() Districts {
	return Districts{
		Council:   d[ColumnCouncilDistrict],
		Community: d[ColumnCommunityDistrict],
		Borough:   d[ColumnBorough],
	}
}

func parseCoordinate(d Dock, column string) (float64, error) {
	raw, ok := d[column]
	if !ok {
		return 0, fmt.Errorf("%w: column %q is missing", ErrInvalidCoordinates, column)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidCoordinates, column, raw, err)
	}

	return value, nil
}

// Districts holds the administrative boundaries a dock was assigned to.
// An empty field means no boundary of that layer contains the dock.
type Districts struct {
	Council   string
	Community string
	Borough   string
}

// DockSet is the ordered content of a dock file.
type DockSet struct {
	Header []string // Header lists the columns in output order.
	Docks  []Dock   // Docks keeps the rows in file order.
}

// AppendColumns adds columns to the end of the header, skipping ones already present.
func (s *DockSet) AppendColumns(columns ...string) {
	for _, column := range columns {
		if !s.HasColumn(column) {
			s.Header = append(s.Header, column)
		}
	}
}

// HasColumn reports whether the header contains column.
func (s *DockSet) HasColumn(column string) bool {
	for _, h := range s.Header {
		if h == column {
			return true
		}
	}

	return false
}
