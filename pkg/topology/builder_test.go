package topology

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeSource is a RingSource with a fixed dimension and ring.
type fakeSource struct {
	dim  int
	ring []Point
	err  error
}

func (f fakeSource) Dimension() int              { return f.dim }
func (f fakeSource) OuterRing() ([]Point, error) { return f.ring, f.err }

// closed returns pts followed by its first point.
func closed(pts ...Point) []Point {
	return append(pts, pts[0])
}

// gridTriangles returns two triangles per cell of an n x n grid, so that
// neighbouring triangles share edges exactly.
func gridTriangles(n int) [][]Point {
	var rings [][]Point
	at := func(x, y int) Point {
		return Point{X: 7.8 + float64(x)*0.001, Y: 46.3 + float64(y)*0.001, Z: float64((x*31+y*17)%23) + 400}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			rings = append(rings,
				[]Point{at(x, y), at(x+1, y), at(x, y+1)},
				[]Point{at(x, y+1), at(x+1, y), at(x+1, y+1)},
			)
		}
	}
	return rings
}

func checkInvariants(t *testing.T, topo *Topology, inputPoints int) {
	t.Helper()

	n := len(topo.Coords)
	if len(topo.UVertex) != n || len(topo.VVertex) != n || len(topo.HVertex) != n {
		t.Fatalf("vertex arrays differ in length: u=%d v=%d h=%d coords=%d",
			len(topo.UVertex), len(topo.VVertex), len(topo.HVertex), n)
	}
	if len(topo.Indices) != inputPoints {
		t.Errorf("expected %d indices, got %d", inputPoints, len(topo.Indices))
	}
	for i, idx := range topo.Indices {
		if int(idx) >= n {
			t.Fatalf("index %d = %d out of range [0,%d)", i, idx, n)
		}
	}
	for i, p := range topo.Coords {
		if topo.UVertex[i] != p.X || topo.VVertex[i] != p.Y || topo.HVertex[i] != p.Z {
			t.Errorf("vertex %d arrays do not mirror coords %v", i, p)
		}
	}

	want := emptyExtents()
	for _, p := range topo.Coords {
		want.MinLon = math.Min(want.MinLon, p.X)
		want.MinLat = math.Min(want.MinLat, p.Y)
		want.MinHeight = math.Min(want.MinHeight, p.Z)
		want.MaxLon = math.Max(want.MaxLon, p.X)
		want.MaxLat = math.Max(want.MaxLat, p.Y)
		want.MaxHeight = math.Max(want.MaxHeight, p.Z)
	}
	if diff := cmp.Diff(want, topo.Extents); diff != "" {
		t.Errorf("extents mismatch (-want +got):\n%s", diff)
	}
}

func TestWeldSharedEdge(t *testing.T) {
	ringA := []Point{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	ringB := []Point{{1, 0, 0}, {2, 0, 0}, {1, 1, 0}}

	b, err := NewBuilder(Input{Rings: [][]Point{ringA, ringB}})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	topo, err := b.BuildFromRings()
	if err != nil {
		t.Fatalf("BuildFromRings: %v", err)
	}

	checkInvariants(t, topo, 6)
	if topo.VertexCount() != 4 {
		t.Errorf("expected 4 unique vertices, got %d", topo.VertexCount())
	}
	if diff := cmp.Diff([]uint32{0, 1, 2, 1, 3, 2}, topo.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if topo.Indices[1] != topo.Indices[3] {
		t.Errorf("(1,0,0) welded to %d and %d", topo.Indices[1], topo.Indices[3])
	}
	if topo.Indices[2] != topo.Indices[5] {
		t.Errorf("(1,1,0) welded to %d and %d", topo.Indices[2], topo.Indices[5])
	}
	if topo.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", topo.TriangleCount())
	}
	if got := topo.Triangle(1); got != [3]uint32{1, 3, 2} {
		t.Errorf("Triangle(1) = %v, want [1 3 2]", got)
	}
}

func TestWeldGrid(t *testing.T) {
	const n = 12
	rings := gridTriangles(n)

	b, err := NewBuilder(Input{Rings: rings}, WithCapacityHint((n+1)*(n+1)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	topo, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	checkInvariants(t, topo, len(rings)*3)
	if topo.VertexCount() != (n+1)*(n+1) {
		t.Errorf("expected %d unique vertices, got %d", (n+1)*(n+1), topo.VertexCount())
	}
	if len(topo.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(topo.Indices))
	}
	if topo.TriangleCount() != 2*n*n {
		t.Errorf("expected %d triangles, got %d", 2*n*n, topo.TriangleCount())
	}

	// Every index must point back at the exact input point.
	k := 0
	for _, ring := range rings {
		for _, p := range ring {
			if got := topo.Coords[topo.Indices[k]]; got != p {
				t.Fatalf("index %d resolves to %v, want %v", k, got, p)
			}
			k++
		}
	}
}

func TestWeldFirstSeenOrder(t *testing.T) {
	rings := [][]Point{
		{{5, 5, 5}, {1, 1, 1}, {3, 3, 3}},
		{{3, 3, 3}, {9, 9, 9}, {5, 5, 5}},
	}
	b, err := NewBuilder(Input{Rings: rings})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	topo, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []Point{{5, 5, 5}, {1, 1, 1}, {3, 3, 3}, {9, 9, 9}}
	if diff := cmp.Diff(want, topo.Coords); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{5, 1, 3, 9}, topo.UVertex); diff != "" {
		t.Errorf("uVertex mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{0, 1, 2, 2, 3, 0}, topo.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestWeldExactEquality(t *testing.T) {
	nan := math.NaN()
	negZero := math.Copysign(0, -1)
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		name     string
		ring     []Point
		vertices int
	}{
		{
			name:     "near duplicates stay apart",
			ring:     []Point{{tenth + fifth, 0, 0}, {0.3, 0, 0}, {1, 1, 1}},
			vertices: 3,
		},
		{
			name:     "signed zeros compare equal",
			ring:     []Point{{0, 0, 0}, {negZero, 0, negZero}, {1, 1, 1}},
			vertices: 2,
		},
		{
			name:     "NaN never matches",
			ring:     []Point{{nan, 0, 0}, {nan, 0, 0}, {1, 1, 1}},
			vertices: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(Input{Rings: [][]Point{tt.ring}})
			if err != nil {
				t.Fatalf("NewBuilder: %v", err)
			}
			topo, err := b.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if topo.VertexCount() != tt.vertices {
				t.Errorf("expected %d vertices, got %d", tt.vertices, topo.VertexCount())
			}
			if len(topo.Indices) != len(tt.ring) {
				t.Errorf("expected %d indices, got %d", len(tt.ring), len(topo.Indices))
			}
		})
	}
}

func TestBuildFromFeatures(t *testing.T) {
	features := []RingSource{
		fakeSource{dim: 3, ring: closed(Point{0, 0, 10}, Point{1, 0, 20}, Point{1, 1, 30})},
		fakeSource{dim: 3, ring: closed(Point{1, 0, 20}, Point{2, 0, 5}, Point{1, 1, 30})},
	}

	b, err := NewBuilder(Input{Features: features})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	topo, err := b.BuildFromFeatures()
	if err != nil {
		t.Fatalf("BuildFromFeatures: %v", err)
	}

	// Closing points are dropped, so each ring contributes three indices.
	checkInvariants(t, topo, 6)
	if topo.VertexCount() != 4 {
		t.Errorf("expected 4 unique vertices, got %d", topo.VertexCount())
	}
	want := Extents{MinLon: 0, MinLat: 0, MinHeight: 5, MaxLon: 2, MaxLat: 1, MaxHeight: 30}
	if diff := cmp.Diff(want, topo.Extents); diff != "" {
		t.Errorf("extents mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBuilderErrors(t *testing.T) {
	ring := []Point{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	feature := fakeSource{dim: 3, ring: closed(ring...)}

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"neither", Input{}, ErrInvalidInput},
		{"both", Input{Features: []RingSource{feature}, Rings: [][]Point{ring}}, ErrInvalidInput},
		{"empty features", Input{Features: []RingSource{}}, ErrInvalidInput},
		{"empty rings", Input{Rings: [][]Point{}}, ErrInvalidInput},
		{"empty ring", Input{Rings: [][]Point{ring, {}}}, ErrInvalidInput},
		{"nil feature", Input{Features: []RingSource{feature, nil}}, ErrTypeMismatch},
		{"zero polygon source", Input{Features: []RingSource{feature, PolygonSource{}}}, ErrTypeMismatch},
		{"nil polygon source pointer", Input{Features: []RingSource{(*PolygonSource)(nil)}}, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if b != nil {
				t.Error("expected nil builder on error")
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	good := fakeSource{dim: 3, ring: closed(Point{0, 0, 0}, Point{1, 0, 0}, Point{1, 1, 0})}
	sourceErr := errors.New("ring unavailable")

	tests := []struct {
		name     string
		features []RingSource
		want     error
	}{
		{"dimension 2", []RingSource{good, fakeSource{dim: 2, ring: good.ring}}, ErrUnsupportedDimension},
		{"dimension 4", []RingSource{fakeSource{dim: 4, ring: good.ring}}, ErrUnsupportedDimension},
		{"source error", []RingSource{good, fakeSource{dim: 3, err: sourceErr}}, sourceErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(Input{Features: tt.features})
			if err != nil {
				t.Fatalf("NewBuilder: %v", err)
			}
			topo, err := b.Build()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if topo != nil {
				t.Error("expected no topology on error")
			}

			// A failed builder cannot be retried into a partial result.
			if topo, err := b.Build(); err == nil || topo != nil {
				t.Errorf("expected rebuild to fail, got %v, %v", topo, err)
			}
		})
	}
}

func TestBuilderSingleUse(t *testing.T) {
	ring := []Point{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}

	b, err := NewBuilder(Input{Rings: [][]Point{ring}})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := b.BuildFromFeatures(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for wrong input kind, got %v", err)
	}

	first, err := b.BuildFromRings()
	if err != nil {
		t.Fatalf("BuildFromRings: %v", err)
	}
	if _, err := b.BuildFromRings(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput on second build, got %v", err)
	}
	if first.VertexCount() != 3 {
		t.Errorf("first result changed after second build: %d vertices", first.VertexCount())
	}
}

func TestBuildVertexLimit(t *testing.T) {
	ring := []Point{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}

	tests := []struct {
		name  string
		limit uint64
		want  error
	}{
		{"last index usable", 3, nil},
		{"one past", 2, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(Input{Rings: [][]Point{ring, ring}})
			if err != nil {
				t.Fatalf("NewBuilder: %v", err)
			}
			b.limit = tt.limit
			topo, err := b.Build()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want != nil {
				return
			}
			if diff := cmp.Diff([]uint32{0, 1, 2, 0, 1, 2}, topo.Indices); diff != "" {
				t.Errorf("indices mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildContextCancelled(t *testing.T) {
	ring := []Point{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := map[string]Input{
		"features": {Features: []RingSource{fakeSource{dim: 3, ring: closed(ring...)}}},
		"rings":    {Rings: [][]Point{ring}},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			b, err := NewBuilder(in)
			if err != nil {
				t.Fatalf("NewBuilder: %v", err)
			}
			topo, err := b.BuildContext(ctx)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if topo != nil {
				t.Error("expected no topology on cancellation")
			}
		})
	}
}

func TestTopologyString(t *testing.T) {
	b, err := NewBuilder(Input{Rings: [][]Point{
		{{0, 0, 1}, {1, 0, 2}, {1, 1, 3}},
		{{1, 0, 2}, {2, 0, 4}, {1, 1, 3}},
	}})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	topo, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := topo.String()
	for _, want := range []string{
		"Min height: 1",
		"Max height: 4",
		"uVertex length: 4",
		"indexData length: 6",
		"indexData list: [0 1 2 1 3 2]",
		"Number of triangles: 2",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
