package loader

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	remath "raybvh/math"
)

func decodeGLTFDoc(t *testing.T, docJSON string) *gltf.Document {
	t.Helper()
	var doc gltf.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &doc
}

func TestSceneRootsExplicitScene(t *testing.T) {
	doc := decodeGLTFDoc(t, `{
		"scene": 0,
		"scenes": [{"nodes": [2]}],
		"nodes": [
			{"children": []},
			{"children": []},
			{"children": [0, 1]}
		]
	}`)
	roots := sceneRoots(doc)
	if len(roots) != 1 || roots[0] != 2 {
		t.Fatalf("roots = %v, want [2]", roots)
	}
}

func TestSceneRootsFallsBackToParentless(t *testing.T) {
	doc := decodeGLTFDoc(t, `{
		"nodes": [
			{"children": [2]},
			{"children": []},
			{"children": []}
		]
	}`)
	roots := sceneRoots(doc)
	if len(roots) != 2 {
		t.Fatalf("roots = %v, want two parentless nodes", roots)
	}
	seen := map[int]bool{}
	for _, r := range roots {
		seen[r] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("roots = %v, want {0,1}", roots)
	}
}

func TestGLTFUVAndNormalBoundsSafety(t *testing.T) {
	uvs := [][2]float32{{0, 0}, {1, 0}}
	if v := gltfUV(uvs, 5); v != (remath.Vec2{}) {
		t.Fatalf("out-of-range uv index should return zero value, got %+v", v)
	}
	if v := gltfUV(uvs, 1); v != (remath.Vec2{X: 1, Y: 0}) {
		t.Fatalf("uv[1] = %+v, want {1,0}", v)
	}

	normals := [][3]float32{{0, 1, 0}}
	if v := gltfNormal(normals, 3); v != (remath.Vec3{}) {
		t.Fatalf("out-of-range normal index should return zero value, got %+v", v)
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "does-not-exist.gltf")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
