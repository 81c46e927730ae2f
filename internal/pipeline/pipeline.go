// Package pipeline loads feature files and builds one topology per file.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/forge-topology/internal/config"
	"github.com/Faultbox/forge-topology/internal/source"
	"github.com/Faultbox/forge-topology/pkg/bsphere"
	vmath "github.com/Faultbox/forge-topology/pkg/math"
	"github.com/Faultbox/forge-topology/pkg/topology"
)

// Result is the outcome of building one file.
type Result struct {
	Path     string
	Features int
	Topology *topology.Topology
	Sphere   *bsphere.Sphere
	Elapsed  time.Duration
}

// Runner builds topologies for feature files.
type Runner struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates a Runner. A nil logger discards output.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run builds every path and returns results in input order. Files are
// processed concurrently, each with its own builder; the first failure
// cancels the rest. Build.Timeout bounds the whole run, including builds
// already in progress.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	format, err := source.ParseFormat(r.cfg.Input.Format)
	if err != nil {
		return nil, err
	}
	if r.cfg.Build.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Build.Timeout)
		defer cancel()
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Build.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.buildFile(ctx, path, format)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) buildFile(ctx context.Context, path string, format source.Format) (Result, error) {
	start := time.Now()
	log := r.log.With(zap.String("file", path))

	sources, err := source.Load(path, format)
	if err != nil {
		return Result{}, err
	}
	log.Debug("loaded features", zap.Int("features", len(sources)))
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	b, err := topology.NewBuilder(
		topology.Input{Features: sources},
		topology.WithLogger(log),
		topology.WithCapacityHint(r.cfg.Build.CapacityHint),
	)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	topo, err := b.BuildContext(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res := Result{
		Path:     path,
		Features: len(sources),
		Topology: topo,
	}
	if r.cfg.Sphere.Enabled {
		s := bsphere.FromPoints(SpherePoints(topo, r.cfg.Sphere.ECEF))
		res.Sphere = &s
	}
	res.Elapsed = time.Since(start)

	log.Info("built topology",
		zap.Int("vertices", topo.VertexCount()),
		zap.Int("triangles", topo.TriangleCount()),
		zap.Duration("elapsed", res.Elapsed),
	)
	if len(topo.Indices)%3 != 0 {
		log.Warn("index count is not a multiple of 3", zap.Int("indices", len(topo.Indices)))
	}
	return res, nil
}

// SpherePoints returns the unique vertices of topo as vectors, converted
// from lon/lat/height to ECEF when ecef is set.
func SpherePoints(topo *topology.Topology, ecef bool) []vmath.Vec3 {
	points := make([]vmath.Vec3, len(topo.Coords))
	for i, c := range topo.Coords {
		if ecef {
			points[i] = vmath.LLHToECEF(c.X, c.Y, c.Z)
		} else {
			points[i] = vmath.Vec3{X: c.X, Y: c.Y, Z: c.Z}
		}
	}
	return points
}
