// Package loader builds bvh.Mesh values from on-disk model formats:
// Wavefront OBJ and glTF. Materials, textures, and scene-graph structure
// are dropped at the door — a Mesh only needs positions, indices, and
// optionally the shading side-table (UVs and normals) that intersection
// itself never reads.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"raybvh/bvh"
	"raybvh/geom"
	remath "raybvh/math"
)

type objVertex struct {
	pos remath.Vec3
	uv  remath.Vec2
	n   remath.Vec3
}

// LoadOBJ parses a Wavefront .obj file and builds a bvh.Mesh from its
// triangulated faces. Multiple objects/groups in the file are flattened
// into one mesh; mtllib/usemtl directives are ignored since materials
// play no part in acceleration-structure construction or traversal.
func LoadOBJ(path string) (*bvh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	var positions []remath.Vec3
	var normals []remath.Vec3
	var uvs []remath.Vec2

	vertexMap := make(map[string]uint32)
	var vertices []objVertex
	var indices []uint32

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "v":
			if len(parts) >= 4 {
				x, _ := strconv.ParseFloat(parts[1], 32)
				y, _ := strconv.ParseFloat(parts[2], 32)
				z, _ := strconv.ParseFloat(parts[3], 32)
				positions = append(positions, remath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})
			}
		case "vn":
			if len(parts) >= 4 {
				x, _ := strconv.ParseFloat(parts[1], 32)
				y, _ := strconv.ParseFloat(parts[2], 32)
				z, _ := strconv.ParseFloat(parts[3], 32)
				normals = append(normals, remath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})
			}
		case "vt":
			if len(parts) >= 3 {
				u, _ := strconv.ParseFloat(parts[1], 32)
				v, _ := strconv.ParseFloat(parts[2], 32)
				uvs = append(uvs, remath.Vec2{X: float32(u), Y: float32(v)})
			}
		case "f":
			faceVerts := make([]uint32, 0, len(parts)-1)
			for _, faceStr := range parts[1:] {
				if idx, ok := vertexMap[faceStr]; ok {
					faceVerts = append(faceVerts, idx)
					continue
				}
				v := parseFaceVertex(faceStr, positions, normals, uvs)
				newIdx := uint32(len(vertices))
				vertices = append(vertices, v)
				vertexMap[faceStr] = newIdx
				faceVerts = append(faceVerts, newIdx)
			}
			for i := 2; i < len(faceVerts); i++ {
				indices = append(indices, faceVerts[0], faceVerts[i-1], faceVerts[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: scan %s: %w", path, err)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("loader: %s: no triangles found", path)
	}

	triCount := len(indices) / 3
	tris := make([]geom.Triangle, triCount)
	shading := make([]geom.TriangleShading, triCount)
	haveShading := len(normals) > 0 || len(uvs) > 0
	for i := 0; i < triCount; i++ {
		a, b, c := vertices[indices[3*i]], vertices[indices[3*i+1]], vertices[indices[3*i+2]]
		tris[i] = geom.NewTriangle(a.pos, b.pos, c.pos)
		shading[i] = geom.TriangleShading{
			UV0: a.uv, UV1: b.uv, UV2: c.uv,
			N0: a.n, N1: b.n, N2: c.n,
		}
	}
	if !haveShading {
		shading = nil
	}

	return bvh.NewMesh(tris, shading), nil
}

func parseFaceVertex(spec string, positions, normals []remath.Vec3, uvs []remath.Vec2) objVertex {
	var v objVertex
	parts := strings.Split(spec, "/")

	if len(parts) >= 1 && parts[0] != "" {
		idx, _ := strconv.Atoi(parts[0])
		if idx < 0 {
			idx = len(positions) + idx + 1
		}
		if idx > 0 && idx <= len(positions) {
			v.pos = positions[idx-1]
		}
	}
	if len(parts) >= 2 && parts[1] != "" {
		idx, _ := strconv.Atoi(parts[1])
		if idx < 0 {
			idx = len(uvs) + idx + 1
		}
		if idx > 0 && idx <= len(uvs) {
			v.uv = uvs[idx-1]
		}
	}
	if len(parts) >= 3 && parts[2] != "" {
		idx, _ := strconv.Atoi(parts[2])
		if idx < 0 {
			idx = len(normals) + idx + 1
		}
		if idx > 0 && idx <= len(normals) {
			v.n = normals[idx-1]
		}
	}
	return v
}
