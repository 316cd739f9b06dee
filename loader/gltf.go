package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"raybvh/bvh"
	"raybvh/geom"
	remath "raybvh/math"
)

// GLTFScene is the result of loading a .glb/.gltf file: one BVH instance
// per mesh-bearing node, each carrying the node's baked world transform.
// Instances referencing the same glTF mesh share one BLAS build.
type GLTFScene struct {
	Instances []*bvh.Instance
}

// LoadGLTF opens a .glb or .gltf file and builds a GLTFScene from its mesh
// primitives and node hierarchy. Materials, textures, and non-mesh nodes
// (cameras, lights) are ignored — none of them affect where a ray hits
// geometry.
func LoadGLTF(path string) (*GLTFScene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}

	meshes := make([][]*bvh.Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, *prim)
			if err != nil {
				fmt.Printf("loader: gltf mesh %d primitive %d: %v\n", mi, pi, err)
				continue
			}
			meshes[mi] = append(meshes[mi], m)
		}
	}

	scene := &GLTFScene{}
	var walk func(nodeIdx int, parent remath.Mat4)
	walk = func(nodeIdx int, parent remath.Mat4) {
		gn := doc.Nodes[nodeIdx]

		t := gn.TranslationOrDefault()
		translation := remath.Mat4Translation(remath.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})

		r := gn.RotationOrDefault()
		rotation := remath.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}.ToMat4()

		sc := gn.ScaleOrDefault()
		scale := remath.Mat4Scale(remath.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])})

		// Mat4 transforms row vectors (p*M), so the first transform applied
		// is the leftmost factor: scale, rotate, translate, then the parent.
		local := scale.Mul(rotation).Mul(translation)
		world := local.Mul(parent)

		if gn.Mesh != nil && int(*gn.Mesh) < len(meshes) {
			for _, m := range meshes[*gn.Mesh] {
				inst := bvh.NewInstance(m.BVH, uint32(len(scene.Instances)))
				inst.SetTransform(world)
				scene.Instances = append(scene.Instances, inst)
			}
		}

		for _, c := range gn.Children {
			walk(int(c), world)
		}
	}

	roots := sceneRoots(doc)
	for _, r := range roots {
		walk(r, remath.Mat4Identity())
	}

	return scene, nil
}

func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		roots := make([]int, len(doc.Scenes[*doc.Scene].Nodes))
		for i, idx := range doc.Scenes[*doc.Scene].Nodes {
			roots[i] = int(idx)
		}
		return roots
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, has := range hasParent {
		if !has {
			roots = append(roots, i)
		}
	}
	return roots
}

func loadGLTFPrimitive(doc *gltf.Document, prim gltf.Primitive) (*bvh.Mesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d not a multiple of 3", len(indices))
	}

	verts := make([]remath.Vec3, len(positions))
	for i, p := range positions {
		verts[i] = remath.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	triCount := len(indices) / 3
	tris := make([]geom.Triangle, triCount)
	shading := make([]geom.TriangleShading, triCount)
	haveShading := len(normals) > 0 || len(uvs) > 0
	for i := 0; i < triCount; i++ {
		ia, ib, ic := indices[3*i], indices[3*i+1], indices[3*i+2]
		tris[i] = geom.NewTriangle(verts[ia], verts[ib], verts[ic])
		shading[i] = geom.TriangleShading{
			UV0: gltfUV(uvs, ia), UV1: gltfUV(uvs, ib), UV2: gltfUV(uvs, ic),
			N0: gltfNormal(normals, ia), N1: gltfNormal(normals, ib), N2: gltfNormal(normals, ic),
		}
	}
	if !haveShading {
		shading = nil
	}

	return bvh.NewMesh(tris, shading), nil
}

func gltfUV(uvs [][2]float32, i uint32) remath.Vec2 {
	if int(i) >= len(uvs) {
		return remath.Vec2{}
	}
	return remath.Vec2{X: uvs[i][0], Y: uvs[i][1]}
}

func gltfNormal(normals [][3]float32, i uint32) remath.Vec3 {
	if int(i) >= len(normals) {
		return remath.Vec3{}
	}
	n := normals[i]
	return remath.Vec3{X: n[0], Y: n[1], Z: n[2]}
}
