package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"raybvh/geom"
	remath "raybvh/math"
)

const triangleOBJ = `
# single triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 0 1
f 1/1/1 2/2/1 3/3/1
`

func writeTempOBJ(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp obj: %v", err)
	}
	return path
}

func TestLoadOBJSingleTriangle(t *testing.T) {
	path := writeTempOBJ(t, triangleOBJ)
	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh.Tri) != 1 {
		t.Fatalf("got %d triangles, want 1", len(mesh.Tri))
	}
	if mesh.TriEx == nil {
		t.Fatalf("expected shading data from vn/vt directives")
	}

	ray := geom.NewRay(remath.Vec3{X: 0.25, Y: 0.25, Z: 1}, remath.Vec3{X: 0, Y: 0, Z: -1})
	mesh.BVH.Intersect(&ray, 0)
	if math.Abs(float64(ray.Hit.T-1)) > 1e-5 {
		t.Fatalf("t = %v, want 1", ray.Hit.T)
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	if _, err := LoadOBJ("/nonexistent/path/does-not-exist.obj"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadOBJEmptyFile(t *testing.T) {
	path := writeTempOBJ(t, "# nothing but a comment\n")
	if _, err := LoadOBJ(path); err == nil {
		t.Fatalf("expected an error for a file with no faces")
	}
}
