package topology

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// maxVertices is the number of distinct vertices a uint32 index can address.
const maxVertices = math.MaxUint32 + 1

// RingSource provides one polygon ring with its coordinate dimension.
// OuterRing returns the closed ring, so the last point repeats the first.
type RingSource interface {
	Dimension() int
	OuterRing() ([]Point, error)
}

// Input selects what a Builder welds. Exactly one field must be set.
type Input struct {
	Features []RingSource // closing point is dropped
	Rings    [][]Point    // welded as given
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build progress.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithCapacityHint preallocates room for n unique vertices.
func WithCapacityHint(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.hint = n
		}
	}
}

// Builder accumulates a Topology over one build pass. It is not safe for
// concurrent use and may be built only once.
type Builder struct {
	features []RingSource
	rings    [][]Point
	log      *zap.Logger
	hint     int
	spent    bool

	// Welding state, shared by every ring of the pass.
	topo   *Topology
	lookup map[Point]uint32
	index  uint64
	limit  uint64
}

// NewBuilder validates the input and returns a builder ready for one pass.
func NewBuilder(in Input, opts ...Option) (*Builder, error) {
	if in.Features == nil && in.Rings == nil {
		return nil, fmt.Errorf("%w: provide a list of features or rings coordinates", ErrInvalidInput)
	}
	if in.Features != nil && in.Rings != nil {
		return nil, fmt.Errorf("%w: features and rings coordinates are mutually exclusive", ErrInvalidInput)
	}
	if in.Features != nil {
		if len(in.Features) == 0 {
			return nil, fmt.Errorf("%w: the list must contain at least one feature", ErrInvalidInput)
		}
		for i, f := range in.Features {
			if f == nil || nilPolygon(f) {
				return nil, fmt.Errorf("%w: feature %d is nil", ErrTypeMismatch, i)
			}
		}
	}
	if in.Rings != nil {
		if len(in.Rings) == 0 {
			return nil, fmt.Errorf("%w: the list must contain at least one ring", ErrInvalidInput)
		}
		for i, r := range in.Rings {
			if len(r) == 0 {
				return nil, fmt.Errorf("%w: ring %d is empty", ErrInvalidInput, i)
			}
		}
	}

	b := &Builder{
		features: in.Features,
		rings:    in.Rings,
		log:      zap.NewNop(),
		limit:    maxVertices,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build welds whichever input kind the builder was created with.
func (b *Builder) Build() (*Topology, error) {
	return b.BuildContext(context.Background())
}

// BuildContext is like Build but stops between rings once ctx is done.
func (b *Builder) BuildContext(ctx context.Context) (*Topology, error) {
	if b.features != nil {
		return b.buildFeatures(ctx)
	}
	return b.buildRings(ctx)
}

// BuildFromFeatures welds every feature's outer ring without its closing point.
func (b *Builder) BuildFromFeatures() (*Topology, error) {
	return b.buildFeatures(context.Background())
}

// BuildFromRings welds every raw ring as given.
func (b *Builder) BuildFromRings() (*Topology, error) {
	return b.buildRings(context.Background())
}

func (b *Builder) buildFeatures(ctx context.Context) (*Topology, error) {
	if err := b.begin(b.features == nil, "features"); err != nil {
		return nil, err
	}
	features := b.features
	b.features = nil

	b.log.Debug("building topology", zap.Int("features", len(features)))
	for i, f := range features {
		if err := ctx.Err(); err != nil {
			return nil, b.fail(err)
		}
		dim := f.Dimension()
		if dim != 3 {
			return nil, b.fail(fmt.Errorf("%w: feature %d has dimension %d", ErrUnsupportedDimension, i, dim))
		}
		ring, err := f.OuterRing()
		if err != nil {
			return nil, b.fail(fmt.Errorf("feature %d: %w", i, err))
		}
		if len(ring) > 0 {
			ring = ring[:len(ring)-1]
		}
		if err := b.weld(ring); err != nil {
			return nil, b.fail(err)
		}
	}
	return b.finish(), nil
}

func (b *Builder) buildRings(ctx context.Context) (*Topology, error) {
	if err := b.begin(b.rings == nil, "rings coordinates"); err != nil {
		return nil, err
	}
	rings := b.rings
	b.rings = nil

	b.log.Debug("building topology", zap.Int("rings", len(rings)))
	for _, ring := range rings {
		if err := ctx.Err(); err != nil {
			return nil, b.fail(err)
		}
		if err := b.weld(ring); err != nil {
			return nil, b.fail(err)
		}
	}
	return b.finish(), nil
}

func (b *Builder) begin(missing bool, kind string) error {
	if b.spent {
		return fmt.Errorf("%w: builder has already been used", ErrInvalidInput)
	}
	if missing {
		return fmt.Errorf("%w: builder was not given %s", ErrInvalidInput, kind)
	}
	b.spent = true
	b.topo = &Topology{
		UVertex: make([]float64, 0, b.hint),
		VVertex: make([]float64, 0, b.hint),
		HVertex: make([]float64, 0, b.hint),
		Coords:  make([]Point, 0, b.hint),
		Indices: make([]uint32, 0, b.hint*2),
		Extents: emptyExtents(),
	}
	b.lookup = make(map[Point]uint32, b.hint)
	b.index = 0
	return nil
}

// fail drops all partial state so nothing half-built escapes.
func (b *Builder) fail(err error) error {
	b.topo = nil
	b.lookup = nil
	b.features = nil
	b.rings = nil
	return err
}

func (b *Builder) finish() *Topology {
	t := b.topo
	b.topo = nil
	b.lookup = nil
	b.log.Debug("terrain topology has been created",
		zap.Int("vertices", len(t.Coords)),
		zap.Int("indices", len(t.Indices)),
		zap.Int("triangles", t.TriangleCount()),
	)
	return t
}

// weld appends ring to the topology. Points match only when all three
// components compare equal, which is what Go map keys of Point do.
func (b *Builder) weld(ring []Point) error {
	t := b.topo
	for _, p := range ring {
		if i, ok := b.lookup[p]; ok {
			t.Indices = append(t.Indices, i)
			continue
		}
		if b.index >= b.limit {
			return fmt.Errorf("%w: more than %d unique vertices", ErrInvalidInput, b.limit)
		}
		t.UVertex = append(t.UVertex, p.X)
		t.VVertex = append(t.VVertex, p.Y)
		t.HVertex = append(t.HVertex, p.Z)
		t.Coords = append(t.Coords, p)
		t.Extents.extend(p)
		t.Indices = append(t.Indices, uint32(b.index))
		b.lookup[p] = uint32(b.index)
		b.index++
	}
	return nil
}
