package viewer

import (
	"raybvh/geom"
	remath "raybvh/math"
)

// boxEdgeOffsets are the 12 edges of a unit box expressed as pairs of
// corner indices into the 8-corner enumeration returned by aabbCorners.
var boxEdgeOffsets = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0}, // bottom face (z = min)
	{4, 5}, {5, 7}, {7, 6}, {6, 4}, // top face (z = max)
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // verticals
}

// Vertex is one line-list vertex: position plus a flat RGB color.
type Vertex struct {
	Pos   remath.Vec3
	Color remath.Vec3
}

// aabbCorners returns the 8 corners of box in the same order boxEdgeOffsets
// indexes into: bit 0 selects X, bit 1 selects Y, bit 2 selects Z.
func aabbCorners(box geom.AABB) [8]remath.Vec3 {
	var c [8]remath.Vec3
	for i := 0; i < 8; i++ {
		x, y, z := box.Min.X, box.Min.Y, box.Min.Z
		if i&1 != 0 {
			x = box.Max.X
		}
		if i&2 != 0 {
			y = box.Max.Y
		}
		if i&4 != 0 {
			z = box.Max.Z
		}
		c[i] = remath.Vec3{X: x, Y: y, Z: z}
	}
	return c
}

// AppendBoxWireframe appends the 12-edge (24-vertex) line list for box,
// colored uniformly, to verts.
func AppendBoxWireframe(verts []Vertex, box geom.AABB, color remath.Vec3) []Vertex {
	corners := aabbCorners(box)
	for _, e := range boxEdgeOffsets {
		verts = append(verts, Vertex{Pos: corners[e[0]], Color: color}, Vertex{Pos: corners[e[1]], Color: color})
	}
	return verts
}

// depthColor maps a BVH/kd-tree depth to a wireframe color, cycling
// through a small palette so nested levels stay visually distinct.
func depthColor(depth int) remath.Vec3 {
	palette := [...]remath.Vec3{
		{X: 1, Y: 0.2, Z: 0.2},
		{X: 0.2, Y: 1, Z: 0.2},
		{X: 0.3, Y: 0.5, Z: 1},
		{X: 1, Y: 1, Z: 0.2},
		{X: 1, Y: 0.4, Z: 1},
		{X: 0.3, Y: 1, Z: 1},
	}
	return palette[depth%len(palette)]
}
