package bvh

import (
	"math"
	"testing"

	"raybvh/geom"
	remath "raybvh/math"
)

func unitCubeMesh() *Mesh {
	// Two triangles per face, 12 total; enough to exercise a real BVH build.
	s := float32(0.5)
	verts := [8]remath.Vec3{
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s},
	}
	idx := [][3]int{
		{0, 1, 2}, {0, 2, 3}, // back
		{4, 6, 5}, {4, 7, 6}, // front
		{0, 4, 5}, {0, 5, 1}, // bottom
		{3, 2, 6}, {3, 6, 7}, // top
		{0, 3, 7}, {0, 7, 4}, // left
		{1, 5, 6}, {1, 6, 2}, // right
	}
	tris := make([]geom.Triangle, len(idx))
	for i, tri := range idx {
		tris[i] = geom.NewTriangle(verts[tri[0]], verts[tri[1]], verts[tri[2]])
	}
	return NewMesh(tris, nil)
}

// Instance equivalence: transforming the mesh by M and querying via
// Instance should match transforming the ray by M^-1 and querying the
// raw BVH.
func TestInstanceEquivalence(t *testing.T) {
	mesh := unitCubeMesh()
	m := remath.Mat4Translation(remath.Vec3{X: 5, Y: 0, Z: 0})

	inst := NewInstance(mesh.BVH, 0)
	inst.SetTransform(m)

	worldRay := geom.NewRay(remath.Vec3{X: 10, Y: 0, Z: 0}, remath.Vec3{X: -1, Y: 0, Z: 0})
	inst.Intersect(&worldRay)

	objOrigin := m.Inverse().MulVec3(remath.Vec3{X: 10, Y: 0, Z: 0})
	dir4 := m.Inverse().MulVec(remath.Vec4{X: -1, Y: 0, Z: 0, W: 0})
	objRay := geom.NewRay(objOrigin, dir4.ToVec3())
	mesh.BVH.Intersect(&objRay, 0)

	if math.Abs(float64(worldRay.Hit.T-objRay.Hit.T)) > 1e-4 {
		t.Fatalf("world hit t=%v, object-space hit t=%v", worldRay.Hit.T, objRay.Hit.T)
	}
	worldPoint := worldRay.O.Add(worldRay.D.Mul(worldRay.Hit.T))
	if math.Abs(float64(worldPoint.X-5.5)) > 1e-3 {
		t.Fatalf("expected hit near x=5.5, got %v", worldPoint)
	}
}

// Two meshes, two instances scenario.
func TestTwoInstancesRayHitsSecond(t *testing.T) {
	meshA := unitCubeMesh()
	meshB := unitCubeMesh()

	instA := NewInstance(meshA.BVH, 0)
	instA.SetTransform(remath.Mat4Identity())

	instB := NewInstance(meshB.BVH, 1)
	instB.SetTransform(remath.Mat4Translation(remath.Vec3{X: 3, Y: 0, Z: 0}))

	// unit cube here spans [-0.5,0.5]; the query ray originates at (5,0,0)
	// heading toward -X, level with both cube centers.
	ray := geom.NewRay(remath.Vec3{X: 5, Y: 0, Z: 0}, remath.Vec3{X: -1, Y: 0, Z: 0})

	instA.Intersect(&ray)
	instB.Intersect(&ray)

	if math.IsInf(float64(ray.Hit.T), 1) {
		t.Fatalf("expected a hit")
	}
	instIdx, _ := geom.UnpackInstPrim(ray.Hit.InstPrim)
	if instIdx != 1 {
		t.Fatalf("expected hit on instance 1, got %d", instIdx)
	}
	if math.Abs(float64(ray.Hit.T-1.5)) > 1e-3 {
		t.Fatalf("t = %v, want 1.5 (cube B face at x=3.5)", ray.Hit.T)
	}
}
