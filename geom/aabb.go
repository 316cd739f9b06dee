// Package geom holds the geometric atoms shared by the BLAS, TLAS and
// kd-tree: triangles, axis-aligned bounding boxes, rays and intersection
// records. None of these types know about tree topology; bvh and tlas
// build trees over them.
package geom

import (
	"math"

	remath "raybvh/math"
)

// AABB is an axis-aligned bounding box. A freshly zero-valued AABB is not
// empty (it is a degenerate box at the origin) — use NewEmptyAABB for the
// "no bounds yet" state that Grow expects.
type AABB struct {
	Min, Max remath.Vec3
}

// NewEmptyAABB returns a box initialized to (+inf, -inf) so that Grow over
// it is a no-op until the first point/box is added.
func NewEmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: remath.Vec3{X: inf, Y: inf, Z: inf},
		Max: remath.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmpty reports whether the box has never been grown.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Grow extends the box to include p.
func (b *AABB) Grow(p remath.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// GrowBox extends the box to include other. Growing by an empty box is a
// no-op.
func (b *AABB) GrowBox(other AABB) {
	if other.IsEmpty() {
		return
	}
	b.Grow(other.Min)
	b.Grow(other.Max)
}

// Extent returns bmax - bmin.
func (b AABB) Extent() remath.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() remath.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Area returns the surface-area heuristic figure used throughout this
// package: 2*(ex*ey+ey*ez+ez*ex) with the factor of 2 elided, since only
// relative magnitudes matter for SAH comparisons and nearest-neighbor
// search.
func (b AABB) Area() float32 {
	e := b.Extent()
	return e.X*e.Y + e.Y*e.Z + e.Z*e.X
}

// Union returns the smallest box containing both a and b.
func Union(a, b AABB) AABB {
	out := a
	out.GrowBox(b)
	return out
}

// TransformCorners returns the AABB of the eight corners of local
// transformed by m — the standard (and only correct, for a non-axis-
// preserving transform) way to compute a world-space bound from a local
// one.
func TransformCorners(local AABB, m remath.Mat4) AABB {
	mn, mx := local.Min, local.Max
	corners := [8]remath.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	out := NewEmptyAABB()
	for _, c := range corners {
		out.Grow(m.MulVec3(c))
	}
	return out
}
