// Package bsphere computes bounding spheres for terrain vertices.
package bsphere

import (
	"fmt"
	"math"

	vmath "github.com/Faultbox/forge-topology/pkg/math"
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center vmath.Vec3
	Radius float64
}

// String returns the center and radius.
func (s Sphere) String() string {
	return fmt.Sprintf("center=(%.6f, %.6f, %.6f) radius=%.6f", s.Center.X, s.Center.Y, s.Center.Z, s.Radius)
}

// Contains reports whether p lies inside or on the sphere.
func (s Sphere) Contains(p vmath.Vec3) bool {
	return s.Center.DistanceSquared(p) <= s.Radius*s.Radius
}

// FromPoints fits a sphere around points. It runs Ritter's algorithm and
// compares the result with the sphere centred on the bounding box, returning
// the smaller of the two. An empty slice yields the zero Sphere.
func FromPoints(points []vmath.Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}

	// Extreme points along each axis
	minX, minY, minZ := points[0], points[0], points[0]
	maxX, maxY, maxZ := points[0], points[0], points[0]
	for _, p := range points[1:] {
		if p.X < minX.X {
			minX = p
		}
		if p.Y < minY.Y {
			minY = p
		}
		if p.Z < minZ.Z {
			minZ = p
		}
		if p.X > maxX.X {
			maxX = p
		}
		if p.Y > maxY.Y {
			maxY = p
		}
		if p.Z > maxZ.Z {
			maxZ = p
		}
	}

	// The pair with the widest separation seeds Ritter's sphere.
	lo, hi := minX, maxX
	span := maxX.DistanceSquared(minX)
	if s := maxY.DistanceSquared(minY); s > span {
		lo, hi, span = minY, maxY, s
	}
	if s := maxZ.DistanceSquared(minZ); s > span {
		lo, hi = minZ, maxZ
	}

	ritterCenter := lo.Lerp(hi, 0.5)
	radiusSquared := hi.DistanceSquared(ritterCenter)
	ritterRadius := math.Sqrt(radiusSquared)

	boxMin := vmath.Vec3{X: minX.X, Y: minY.Y, Z: minZ.Z}
	boxMax := vmath.Vec3{X: maxX.X, Y: maxY.Y, Z: maxZ.Z}
	naiveCenter := boxMin.Lerp(boxMax, 0.5)
	var naiveRadius float64

	for _, p := range points {
		if r := p.Distance(naiveCenter); r > naiveRadius {
			naiveRadius = r
		}

		d2 := p.DistanceSquared(ritterCenter)
		if d2 > radiusSquared {
			d := math.Sqrt(d2)
			ritterRadius = (ritterRadius + d) * 0.5
			radiusSquared = ritterRadius * ritterRadius
			shift := d - ritterRadius
			ritterCenter = ritterCenter.Scale(ritterRadius).Add(p.Scale(shift)).Scale(1 / d)
		}
	}

	if ritterRadius < naiveRadius {
		return Sphere{Center: ritterCenter, Radius: ritterRadius}
	}
	return Sphere{Center: naiveCenter, Radius: naiveRadius}
}
