package viewer

import (
	"testing"

	"raybvh/geom"
	remath "raybvh/math"
)

func TestAppendBoxWireframeVertexCount(t *testing.T) {
	box := geom.AABB{Min: remath.Vec3{X: -1, Y: -1, Z: -1}, Max: remath.Vec3{X: 1, Y: 1, Z: 1}}
	verts := AppendBoxWireframe(nil, box, remath.Vec3{X: 1, Y: 1, Z: 1})
	if len(verts) != 24 {
		t.Fatalf("got %d vertices, want 24 (12 edges * 2)", len(verts))
	}
	for _, v := range verts {
		if v.Pos.X != box.Min.X && v.Pos.X != box.Max.X {
			t.Fatalf("vertex %+v not on a box face along X", v)
		}
	}
}

func TestAppendBoxWireframeAppends(t *testing.T) {
	box := geom.AABB{Min: remath.Vec3{}, Max: remath.Vec3{X: 1, Y: 1, Z: 1}}
	base := []Vertex{{Pos: remath.Vec3{X: 99}}}
	verts := AppendBoxWireframe(base, box, remath.Vec3{})
	if len(verts) != 25 {
		t.Fatalf("got %d vertices, want 25 (1 existing + 24)", len(verts))
	}
	if verts[0].Pos.X != 99 {
		t.Fatalf("existing vertex was overwritten")
	}
}

func TestDepthColorCycles(t *testing.T) {
	seen := map[remath.Vec3]bool{}
	for d := 0; d < 6; d++ {
		seen[depthColor(d)] = true
	}
	if len(seen) != 6 {
		t.Fatalf("palette should have 6 distinct colors over depths 0..5, got %d", len(seen))
	}
	if depthColor(0) != depthColor(6) {
		t.Fatalf("palette should cycle with period 6")
	}
}
