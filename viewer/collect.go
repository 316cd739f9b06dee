package viewer

import (
	"raybvh/bvh"
	"raybvh/geom"
	remath "raybvh/math"
	"raybvh/tlas"
)

// CollectBLASWireframe walks b's node tree and appends one box per node to
// verts, colored by depth. Nodes, leaves included, are drawn down to depth
// maxDepth (the root is depth 0); a negative maxDepth draws the whole tree.
func CollectBLASWireframe(verts []Vertex, b *bvh.BVH, maxDepth int) []Vertex {
	if b.NodesUsed == 0 {
		return verts
	}
	var walk func(idx uint32, depth int)
	walk = func(idx uint32, depth int) {
		node := &b.Nodes[idx]
		verts = AppendBoxWireframe(verts, node.Bounds(), depthColor(depth))
		if node.IsLeaf() || (maxDepth >= 0 && depth >= maxDepth) {
			return
		}
		walk(node.LeftFirst, depth+1)
		walk(node.LeftFirst+1, depth+1)
	}
	walk(0, 0)
	return verts
}

// CollectInstanceWireframes appends the world-space bounds box of every
// instance in instances, in a single flat color, letting the caller
// distinguish them from a BLAS/TLAS overlay drawn in a different pass.
func CollectInstanceWireframes(verts []Vertex, instances []*bvh.Instance, color remath.Vec3) []Vertex {
	for _, inst := range instances {
		verts = AppendBoxWireframe(verts, inst.Bounds, color)
	}
	return verts
}

// CollectTLASWireframe walks t's node tree and appends one box per node,
// colored by depth.
func CollectTLASWireframe(verts []Vertex, t *tlas.TLAS, maxDepth int) []Vertex {
	root := t.Root()
	if root.IsEmpty() {
		return verts
	}
	nodes := t.Nodes
	var walk func(idx uint32, depth int)
	walk = func(idx uint32, depth int) {
		node := &nodes[idx]
		verts = AppendBoxWireframe(verts, node.Bounds(), depthColor(depth))
		if node.IsLeaf() || (maxDepth >= 0 && depth >= maxDepth) {
			return
		}
		left, right := node.Children()
		walk(left, depth+1)
		walk(right, depth+1)
	}
	walk(0, 0)
	return verts
}

// CollectKDTreeWireframe draws the aggregate bounding box stored at every
// interior node of kd, using the read-only accessors it exposes for
// testing. Leaves are skipped. Each box drawn is the node's aggregate over
// instance centroids, not over the instances' full bounds.
func CollectKDTreeWireframe(verts []Vertex, kd *tlas.KDTree, color remath.Vec3) []Vertex {
	n := kd.NodeCount()
	for i := uint32(0); i < n; i++ {
		if kd.IsLeafNode(i) {
			continue
		}
		bmin, bmax, _ := kd.NodeAggregate(i)
		verts = AppendBoxWireframe(verts, geom.AABB{Min: bmin, Max: bmax}, color)
	}
	return verts
}
