package bvh

import (
	"raybvh/geom"
	remath "raybvh/math"
)

// Bins is the binned-SAH bin count per axis.
const Bins = 8

// Node is the 32-byte BVH node: (aabbMin, leftFirst, aabbMax, triCount).
// If TriCount > 0 the node is a leaf and LeftFirst indexes into the
// triangle-index permutation; otherwise LeftFirst is the left child's
// index (right child is always LeftFirst+1). No empty leaves ever exist.
type Node struct {
	Min       remath.Vec3
	LeftFirst uint32
	Max       remath.Vec3
	TriCount  uint32
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.TriCount > 0
}

// Bounds returns the node's box as a geom.AABB.
func (n *Node) Bounds() geom.AABB {
	return geom.AABB{Min: n.Min, Max: n.Max}
}

// CalculateNodeCost returns extentArea * triCount, the cost a candidate
// split must beat to be worthwhile.
func (n *Node) CalculateNodeCost() float32 {
	return n.Bounds().Area() * float32(n.TriCount)
}
