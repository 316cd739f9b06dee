// Package bvh implements the per-mesh bottom-level acceleration structure
// (BLAS): binned-SAH construction, refit, and ray intersection, plus
// BVHInstance, a BLAS referenced under an affine transform.
package bvh

import "raybvh/geom"

// Mesh owns the triangle data a BVH is built over, plus the BVH itself.
// Triangle count is fixed at construction; only a mesh's instances'
// transforms animate afterward.
type Mesh struct {
	Tri   []geom.Triangle
	TriEx []geom.TriangleShading // parallel shading record; may be nil
	BVH   *BVH
}

// NewMesh builds a Mesh from triangle positions and builds its BVH
// immediately. shading may be nil if the caller has no UV/normal data to
// carry.
func NewMesh(tris []geom.Triangle, shading []geom.TriangleShading) *Mesh {
	m := &Mesh{Tri: tris, TriEx: shading}
	m.BVH = NewBVH(m)
	m.BVH.Build()
	return m
}
