package bvh

import (
	"raybvh/geom"
	remath "raybvh/math"
)

// Instance is a BLAS referenced under an affine transform, with the
// world-space AABB of the BLAS root cached for the TLAS to build over.
// It holds a non-owning reference to its BVH.
type Instance struct {
	transform    remath.Mat4
	invTransform remath.Mat4

	Bounds geom.AABB // world space

	bvh *BVH
	idx uint32
}

// NewInstance creates an instance of blas at the given TLAS-relative
// index, with an identity transform.
func NewInstance(blas *BVH, index uint32) *Instance {
	inst := &Instance{bvh: blas, idx: index}
	inst.SetTransform(remath.Mat4Identity())
	return inst
}

// Index returns the instance's index, the value stamped into a ray's
// InstPrim on a hit.
func (inst *Instance) Index() uint32 { return inst.idx }

// Transform returns the current forward transform.
func (inst *Instance) Transform() remath.Mat4 { return inst.transform }

// SetTransform stores transform and its inverse, and recomputes Bounds by
// transforming the eight corners of the BLAS root AABB. The caller must
// supply an invertible affine matrix; a singular matrix is a caller bug,
// not a condition this method negotiates.
func (inst *Instance) SetTransform(m remath.Mat4) {
	inst.transform = m
	inst.invTransform = m.Inverse()
	root := inst.bvh.Nodes[0]
	inst.Bounds = geom.TransformCorners(root.Bounds(), m)
}

// Intersect transforms ray into the BLAS's object space, delegates to the
// underlying BVH, then restores the ray's world-space origin/direction
// while keeping the updated hit. Assumes a rigid transform (no
// non-uniform scale): hit.T is not rescaled.
func (inst *Instance) Intersect(ray *geom.Ray) {
	worldO, worldD, worldRD := ray.O, ray.D, ray.RD

	ray.O = inst.invTransform.MulVec3(worldO)
	dir4 := inst.invTransform.MulVec(remath.Vec4{X: worldD.X, Y: worldD.Y, Z: worldD.Z, W: 0})
	ray.D = dir4.ToVec3()
	ray.RD = remath.Vec3{X: 1 / ray.D.X, Y: 1 / ray.D.Y, Z: 1 / ray.D.Z}

	inst.bvh.Intersect(ray, inst.idx)

	ray.O, ray.D, ray.RD = worldO, worldD, worldRD
}
