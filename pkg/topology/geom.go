package topology

import (
	"fmt"

	"github.com/twpayne/go-geom"
)

// PolygonSource adapts a go-geom polygon to RingSource.
type PolygonSource struct {
	Polygon *geom.Polygon
}

// Dimension returns the number of spatial ordinates. A measure ordinate is
// not counted, so XYM is 2 and XYZM is 3.
func (s PolygonSource) Dimension() int {
	if s.Polygon == nil {
		return 0
	}
	layout := s.Polygon.Layout()
	dim := layout.Stride()
	if layout.MIndex() != -1 {
		dim--
	}
	return dim
}

// OuterRing returns the exterior ring as x, y, z points.
func (s PolygonSource) OuterRing() ([]Point, error) {
	if s.Polygon == nil {
		return nil, fmt.Errorf("%w: nil polygon", ErrTypeMismatch)
	}
	if s.Polygon.NumLinearRings() == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrTypeMismatch)
	}
	zIdx := s.Polygon.Layout().ZIndex()
	coords := s.Polygon.LinearRing(0).Coords()
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{X: c[0], Y: c[1]}
		if zIdx != -1 {
			points[i].Z = c[zIdx]
		}
	}
	return points, nil
}

// SourcesFromGeometry returns one RingSource per polygon in g.
// Multi-polygons and collections are flattened in order.
func SourcesFromGeometry(g geom.T) ([]RingSource, error) {
	switch g := g.(type) {
	case *geom.Polygon:
		if g == nil {
			return nil, fmt.Errorf("%w: nil polygon", ErrTypeMismatch)
		}
		return []RingSource{PolygonSource{Polygon: g}}, nil
	case *geom.MultiPolygon:
		if g == nil {
			return nil, fmt.Errorf("%w: nil multi-polygon", ErrTypeMismatch)
		}
		sources := make([]RingSource, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			sources = append(sources, PolygonSource{Polygon: g.Polygon(i)})
		}
		return sources, nil
	case *geom.GeometryCollection:
		if g == nil {
			return nil, fmt.Errorf("%w: nil geometry collection", ErrTypeMismatch)
		}
		var sources []RingSource
		for _, child := range g.Geoms() {
			s, err := SourcesFromGeometry(child)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s...)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("%w: only polygon geometries are supported, got %T", ErrTypeMismatch, g)
	}
}

// nilPolygon reports whether f is a PolygonSource with no polygon behind it.
func nilPolygon(f RingSource) bool {
	switch s := f.(type) {
	case PolygonSource:
		return s.Polygon == nil
	case *PolygonSource:
		return s == nil || s.Polygon == nil
	}
	return false
}

// RingsFromCoordinates converts raw coordinate arrays into rings.
// Each coordinate must have exactly three components.
func RingsFromCoordinates(raw [][][]float64) ([][]Point, error) {
	rings := make([][]Point, len(raw))
	for i, r := range raw {
		ring := make([]Point, len(r))
		for j, c := range r {
			if len(c) != 3 {
				return nil, fmt.Errorf("%w: ring %d point %d has %d components", ErrTypeMismatch, i, j, len(c))
			}
			ring[j] = Point{X: c[0], Y: c[1], Z: c[2]}
		}
		rings[i] = ring
	}
	return rings, nil
}
