package geom

import (
	"math"

	remath "raybvh/math"
)

// instPrimInstanceBits is the width of the instance-index field packed
// into Intersection.InstPrim: instance index in the low 12 bits, primitive
// index in the high 20 bits. This bounds a scene to 4096 instances of
// meshes with up to roughly a million primitives each.
const instPrimInstanceBits = 12

const (
	maxInstances = 1 << instPrimInstanceBits // 4096
	instPrimMask = uint32(maxInstances - 1)
)

// Intersection is the 16-byte hit record carried by every Ray: distance,
// barycentrics of vertices 1 and 2 (vertex 0's weight is 1-u-v), and a
// packed instance/primitive index.
type Intersection struct {
	T        float32
	U, V     float32
	InstPrim uint32
}

// NewIntersection returns a "no hit yet" record: t = +Inf.
func NewIntersection() Intersection {
	return Intersection{T: float32(math.Inf(1))}
}

// PackInstPrim packs an instance index and a primitive index into the
// InstPrim field's fixed bit layout.
func PackInstPrim(instanceIdx, primIdx uint32) uint32 {
	return (primIdx << instPrimInstanceBits) | (instanceIdx & instPrimMask)
}

// UnpackInstPrim decodes InstPrim back into (instanceIdx, primIdx).
func UnpackInstPrim(instPrim uint32) (instanceIdx, primIdx uint32) {
	return instPrim & instPrimMask, instPrim >> instPrimInstanceBits
}

// Ray carries origin, direction, precomputed reciprocal direction, and the
// current closest hit. rD may hold +/-Inf components for axis-aligned
// rays; the caller must never supply a NaN direction component.
type Ray struct {
	O, D, RD remath.Vec3
	Hit      Intersection
}

// NewRay builds a ray with rD precomputed and Hit.T = +Inf.
func NewRay(origin, dir remath.Vec3) Ray {
	return Ray{
		O:   origin,
		D:   dir,
		RD:  remath.Vec3{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z},
		Hit: NewIntersection(),
	}
}

// IntersectAABB is the scalar slab test: returns the entry distance, or
// +Inf on a miss. Callers compare the result against the ray's current
// closest hit to decide whether to descend further; this test does not
// look at Hit itself.
func (r *Ray) IntersectAABB(box AABB) float32 {
	tx1 := (box.Min.X - r.O.X) * r.RD.X
	tx2 := (box.Max.X - r.O.X) * r.RD.X
	tmin := math32Min(tx1, tx2)
	tmax := math32Max(tx1, tx2)

	ty1 := (box.Min.Y - r.O.Y) * r.RD.Y
	ty2 := (box.Max.Y - r.O.Y) * r.RD.Y
	tmin = math32Max(tmin, math32Min(ty1, ty2))
	tmax = math32Min(tmax, math32Max(ty1, ty2))

	tz1 := (box.Min.Z - r.O.Z) * r.RD.Z
	tz2 := (box.Max.Z - r.O.Z) * r.RD.Z
	tmin = math32Max(tmin, math32Min(tz1, tz2))
	tmax = math32Min(tmax, math32Max(tz1, tz2))

	if tmax >= tmin && tmax > 0 {
		return tmin
	}
	return float32(math.Inf(1))
}

func math32Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func math32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
