package geom

import (
	"math"
	"testing"

	remath "raybvh/math"
)

func TestAABBGrowEmpty(t *testing.T) {
	box := NewEmptyAABB()
	if !box.IsEmpty() {
		t.Fatalf("fresh box should be empty")
	}
	box.Grow(remath.Vec3{X: 1, Y: 2, Z: 3})
	if box.Min != (remath.Vec3{X: 1, Y: 2, Z: 3}) || box.Max != (remath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("grow over empty box should collapse to the point: %+v", box)
	}
}

func TestAABBGrowBoxNoOpOnEmpty(t *testing.T) {
	box := NewEmptyAABB()
	box.Grow(remath.Vec3{X: 0, Y: 0, Z: 0})
	box.Grow(remath.Vec3{X: 1, Y: 1, Z: 1})
	before := box
	box.GrowBox(NewEmptyAABB())
	if box != before {
		t.Fatalf("growing by an empty box must be a no-op")
	}
}

func TestAABBArea(t *testing.T) {
	box := AABB{Min: remath.Vec3{X: 0, Y: 0, Z: 0}, Max: remath.Vec3{X: 2, Y: 2, Z: 2}}
	// e = (2,2,2); ex*ey+ey*ez+ez*ex = 4+4+4 = 12 (factor of 2 elided, per spec).
	if got := box.Area(); got != 12 {
		t.Fatalf("Area() = %v, want 12", got)
	}
}

func TestTransformCornersIdentity(t *testing.T) {
	local := AABB{Min: remath.Vec3{X: -1, Y: -1, Z: -1}, Max: remath.Vec3{X: 1, Y: 1, Z: 1}}
	out := TransformCorners(local, remath.Mat4Identity())
	if out.Min != local.Min || out.Max != local.Max {
		t.Fatalf("identity transform should not change bounds: %+v", out)
	}
}

func TestInstPrimPacking(t *testing.T) {
	cases := []struct{ inst, prim uint32 }{
		{0, 0}, {1, 1}, {4095, 0}, {0, 1<<20 - 1}, {2047, 12345},
	}
	for _, c := range cases {
		packed := PackInstPrim(c.inst, c.prim)
		inst, prim := UnpackInstPrim(packed)
		if inst != c.inst || prim != c.prim {
			t.Errorf("PackInstPrim(%d,%d) round-trip = (%d,%d)", c.inst, c.prim, inst, prim)
		}
	}
}

// Canonical single-triangle, single-ray scenario.
func TestIntersectTriangleSingle(t *testing.T) {
	tri := NewTriangle(
		remath.Vec3{X: 0, Y: 0, Z: 0},
		remath.Vec3{X: 1, Y: 0, Z: 0},
		remath.Vec3{X: 0, Y: 1, Z: 0},
	)
	ray := NewRay(remath.Vec3{X: 0.25, Y: 0.25, Z: 1}, remath.Vec3{X: 0, Y: 0, Z: -1})
	if !IntersectTriangle(&ray, tri) {
		t.Fatalf("expected a hit")
	}
	if math.Abs(float64(ray.Hit.T-1)) > 1e-5 {
		t.Errorf("t = %v, want 1", ray.Hit.T)
	}
	if math.Abs(float64(ray.Hit.U-0.25)) > 1e-5 || math.Abs(float64(ray.Hit.V-0.25)) > 1e-5 {
		t.Errorf("u,v = %v,%v want 0.25,0.25", ray.Hit.U, ray.Hit.V)
	}
}

func TestIntersectTriangleMiss(t *testing.T) {
	tri := NewTriangle(
		remath.Vec3{X: 0, Y: 0, Z: 0},
		remath.Vec3{X: 1, Y: 0, Z: 0},
		remath.Vec3{X: 0, Y: 1, Z: 0},
	)
	ray := NewRay(remath.Vec3{X: 2, Y: 2, Z: 1}, remath.Vec3{X: 0, Y: 0, Z: -1})
	if IntersectTriangle(&ray, tri) {
		t.Fatalf("expected a miss")
	}
	if !math.IsInf(float64(ray.Hit.T), 1) {
		t.Errorf("hit.T = %v, want +Inf", ray.Hit.T)
	}
}

func TestIntersectAABBSlab(t *testing.T) {
	box := AABB{Min: remath.Vec3{X: -1, Y: -1, Z: -1}, Max: remath.Vec3{X: 1, Y: 1, Z: 1}}
	ray := NewRay(remath.Vec3{X: 0, Y: 0, Z: 5}, remath.Vec3{X: 0, Y: 0, Z: -1})
	if tHit := ray.IntersectAABB(box); math.Abs(float64(tHit-4)) > 1e-5 {
		t.Errorf("entry t = %v, want 4", tHit)
	}

	missRay := NewRay(remath.Vec3{X: 5, Y: 5, Z: 5}, remath.Vec3{X: 0, Y: 0, Z: -1})
	if tHit := missRay.IntersectAABB(box); !math.IsInf(float64(tHit), 1) {
		t.Errorf("expected miss, got t=%v", tHit)
	}
}
