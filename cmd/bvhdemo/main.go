package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"raybvh/bvh"
	"raybvh/geom"
	"raybvh/loader"
	remath "raybvh/math"
	"raybvh/tlas"
	"raybvh/viewer"
)

func main() {
	objPath := flag.String("obj", "", "path to a Wavefront .obj mesh to load (repeats as a grid of instances if -grid > 1)")
	gltfPath := flag.String("gltf", "", "path to a .gltf/.glb scene to load")
	grid := flag.Int("grid", 1, "when -obj is set, replicate the mesh into an N x N x N grid of instances")
	quick := flag.Bool("quick", false, "use BuildQuick (kd-tree-accelerated clustering) instead of Build")
	showViewer := flag.Bool("view", false, "open a wireframe viewer window instead of printing a ray-cast report")
	flag.Parse()

	instances, err := loadInstances(*objPath, *gltfPath, *grid)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bvhdemo:", err)
		os.Exit(1)
	}
	if len(instances) == 0 {
		fmt.Fprintln(os.Stderr, "bvhdemo: no instances loaded; pass -obj or -gltf")
		os.Exit(1)
	}

	tl := tlas.NewTLAS(instances)
	start := time.Now()
	var stats tlas.BuildStats
	if *quick {
		stats = tl.BuildQuick()
	} else {
		stats = tl.Build()
	}
	fmt.Printf("build: %d instances, %d nodes, %s\n", stats.Instances, stats.NodesUsed, time.Since(start))
	if err := tl.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "bvhdemo:", err)
		os.Exit(1)
	}

	if *showViewer {
		runViewer(instances, tl)
		return
	}
	report(instances, tl)
}

func loadInstances(objPath, gltfPath string, grid int) ([]*bvh.Instance, error) {
	switch {
	case gltfPath != "":
		scene, err := loader.LoadGLTF(gltfPath)
		if err != nil {
			return nil, err
		}
		return scene.Instances, nil
	case objPath != "":
		mesh, err := loader.LoadOBJ(objPath)
		if err != nil {
			return nil, err
		}
		if grid < 1 {
			grid = 1
		}
		box := mesh.BVH.Nodes[0].Bounds()
		spacing := box.Extent().Length() * 1.5
		if spacing == 0 {
			spacing = 1
		}
		var instances []*bvh.Instance
		idx := uint32(0)
		for x := 0; x < grid; x++ {
			for y := 0; y < grid; y++ {
				for z := 0; z < grid; z++ {
					inst := bvh.NewInstance(mesh.BVH, idx)
					pos := remath.Vec3{X: float32(x) * spacing, Y: float32(y) * spacing, Z: float32(z) * spacing}
					inst.SetTransform(remath.Mat4Translation(pos))
					instances = append(instances, inst)
					idx++
				}
			}
		}
		return instances, nil
	default:
		return nil, nil
	}
}

// report fires a handful of rays through the scene's bounding sphere and
// prints what each one hits, a quick sanity check that a loaded model
// built a working acceleration structure without needing the viewer.
func report(instances []*bvh.Instance, tl *tlas.TLAS) {
	root := tl.Root()
	center := root.Center()
	radius := root.Extent().Length()

	fmt.Printf("instances: %d, tlas nodes used: %d, root: %+v\n", len(instances), tl.NodesUsed, root)

	dirs := []remath.Vec3{
		{X: 0, Y: 0, Z: -1}, {X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0}, {X: -1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0}, {X: 0, Y: -1, Z: 0},
	}
	for _, d := range dirs {
		origin := center.Sub(d.Mul(radius * 2))
		ray := geom.NewRay(origin, d)
		tl.Intersect(&ray)
		if !math.IsInf(float64(ray.Hit.T), 1) {
			instIdx, primIdx := geom.UnpackInstPrim(ray.Hit.InstPrim)
			fmt.Printf("  ray from %+v dir %+v: hit instance %d triangle %d at t=%.3f\n", origin, d, instIdx, primIdx, ray.Hit.T)
		} else {
			fmt.Printf("  ray from %+v dir %+v: miss\n", origin, d)
		}
	}
}

func runViewer(instances []*bvh.Instance, tl *tlas.TLAS) {
	v, err := viewer.NewViewer(viewer.DefaultWindowConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "bvhdemo:", err)
		os.Exit(1)
	}
	defer v.Destroy()

	root := tl.Root()
	v.Camera.Position = root.Center().Add(remath.Vec3{X: 0, Y: 0, Z: root.Extent().Length()*1.5 + 1})

	scene := viewer.SceneFunc(func(verts []viewer.Vertex) []viewer.Vertex {
		verts = viewer.CollectTLASWireframe(verts, tl, -1)
		verts = viewer.CollectInstanceWireframes(verts, instances, remath.Vec3{X: 1, Y: 1, Z: 1})
		if kd := tl.KDTree(); kd != nil {
			verts = viewer.CollectKDTreeWireframe(verts, kd, remath.Vec3{X: 1, Y: 0.5, Z: 0})
		}
		return verts
	})

	const dt = 1.0 / 60.0
	for !v.ShouldClose() {
		v.RunFrame(dt, scene)
	}
}
