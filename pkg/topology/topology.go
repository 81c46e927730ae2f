// Package topology welds polygon rings into the indexed vertex layout consumed
// by quantized terrain mesh encoders.
package topology

import (
	"fmt"
	"math"
	"strings"
)

// Point is a 3-D coordinate: longitude, latitude, height.
type Point struct {
	X, Y, Z float64
}

// Extents holds the bounding extents over all unique vertices.
type Extents struct {
	MinLon    float64
	MinLat    float64
	MinHeight float64
	MaxLon    float64
	MaxLat    float64
	MaxHeight float64
}

// emptyExtents returns extents that any point will shrink.
func emptyExtents() Extents {
	return Extents{
		MinLon:    math.Inf(1),
		MinLat:    math.Inf(1),
		MinHeight: math.Inf(1),
		MaxLon:    math.Inf(-1),
		MaxLat:    math.Inf(-1),
		MaxHeight: math.Inf(-1),
	}
}

func (e *Extents) extend(p Point) {
	if p.X < e.MinLon {
		e.MinLon = p.X
	}
	if p.Y < e.MinLat {
		e.MinLat = p.Y
	}
	if p.Z < e.MinHeight {
		e.MinHeight = p.Z
	}
	if p.X > e.MaxLon {
		e.MaxLon = p.X
	}
	if p.Y > e.MaxLat {
		e.MaxLat = p.Y
	}
	if p.Z > e.MaxHeight {
		e.MaxHeight = p.Z
	}
}

// Topology is the result of a build pass.
// UVertex, VVertex, HVertex and Coords are parallel: entry i describes the
// i-th unique vertex in first-seen order. Indices holds one entry per input
// point, each referencing a unique vertex.
type Topology struct {
	UVertex []float64
	VVertex []float64
	HVertex []float64
	Coords  []Point
	Indices []uint32
	Extents Extents
}

// VertexCount returns the number of unique vertices.
func (t *Topology) VertexCount() int {
	return len(t.Coords)
}

// TriangleCount returns len(Indices)/3. The division is exact for
// triangulated input.
func (t *Topology) TriangleCount() int {
	return len(t.Indices) / 3
}

// Triangle returns the vertex indices of the i-th triangle.
func (t *Topology) Triangle(i int) [3]uint32 {
	return [3]uint32{t.Indices[3*i], t.Indices[3*i+1], t.Indices[3*i+2]}
}

// String returns a multi-line dump of the topology.
func (t *Topology) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Min height: %v\n", t.Extents.MinHeight)
	fmt.Fprintf(&sb, "Max height: %v\n", t.Extents.MaxHeight)
	fmt.Fprintf(&sb, "uVertex length: %d\n", len(t.UVertex))
	fmt.Fprintf(&sb, "uVertex list: %v\n", t.UVertex)
	fmt.Fprintf(&sb, "vVertex length: %d\n", len(t.VVertex))
	fmt.Fprintf(&sb, "vVertex list: %v\n", t.VVertex)
	fmt.Fprintf(&sb, "hVertex length: %d\n", len(t.HVertex))
	fmt.Fprintf(&sb, "hVertex list: %v\n", t.HVertex)
	fmt.Fprintf(&sb, "indexData length: %d\n", len(t.Indices))
	fmt.Fprintf(&sb, "indexData list: %v\n", t.Indices)
	fmt.Fprintf(&sb, "Number of triangles: %d", t.TriangleCount())
	return sb.String()
}
