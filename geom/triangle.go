package geom

import remath "raybvh/math"

// Triangle is the minimalist geometric atom BVH build/intersect operates
// on: three object-space vertices plus their precomputed centroid.
type Triangle struct {
	V0, V1, V2 remath.Vec3
	Centroid   remath.Vec3
}

// NewTriangle builds a Triangle and precomputes its centroid.
func NewTriangle(v0, v1, v2 remath.Vec3) Triangle {
	return Triangle{
		V0: v0, V1: v1, V2: v2,
		Centroid: v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
	}
}

// Bounds returns the AABB of the triangle's three vertices.
func (t Triangle) Bounds() AABB {
	box := NewEmptyAABB()
	box.Grow(t.V0)
	box.Grow(t.V1)
	box.Grow(t.V2)
	return box
}

// TriangleShading carries the per-vertex shading attributes a triangle
// does not need for intersection: UVs and normals, indexed identically to
// the Triangle slice it shadows. A caller resolving a hit interpolates
// these by (1-u-v, u, v) to shade the surface; intersection itself never
// reads them.
type TriangleShading struct {
	UV0, UV1, UV2 remath.Vec2
	N0, N1, N2    remath.Vec3
}

const mollerTrumboreEpsilon = 1e-7

// IntersectTriangle implements Möller–Trumbore. On a hit closer than the
// ray's current Hit.T it updates T/U/V and returns true; otherwise the ray
// is left untouched and it returns false. Does not touch InstPrim — the
// caller (bvh.BVH.Intersect) stamps that once it knows the primitive and
// instance index.
func IntersectTriangle(ray *Ray, tri Triangle) bool {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)
	h := ray.D.Cross(edge2)
	a := edge1.Dot(h)
	if a > -mollerTrumboreEpsilon && a < mollerTrumboreEpsilon {
		return false // ray parallel to triangle plane
	}

	f := 1.0 / a
	s := ray.O.Sub(tri.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(edge1)
	v := f * ray.D.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}

	t := f * edge2.Dot(q)
	if t <= mollerTrumboreEpsilon || t >= ray.Hit.T {
		return false
	}

	ray.Hit.T = t
	ray.Hit.U = u
	ray.Hit.V = v
	return true
}
