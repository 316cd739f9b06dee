// Package tlas implements the top-level acceleration structure (TLAS)
// over transformed BVH instances, and the kd-tree auxiliary index used to
// accelerate agglomerative-clustering TLAS construction at interactive
// rates. The two live in one package because the quick TLAS build drives
// the kd-tree directly and the kd-tree reads TLAS node bounds; splitting
// them would mean a circular import.
package tlas

import (
	"raybvh/geom"
	remath "raybvh/math"
)

// Node is the 32-byte top-level node: (aabbMin, leftRight, aabbMax,
// BLAS). If LeftRight == 0 the node is a leaf and BLAS indexes into the
// instance array; otherwise LeftRight packs (left<<16)|right. The root is
// always at index 0; leaves start at index 1.
type Node struct {
	Min       remath.Vec3
	LeftRight uint32
	Max       remath.Vec3
	BLAS      uint32
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool {
	return n.LeftRight == 0
}

// Children decodes LeftRight into (left, right) node indices. Only valid
// when !IsLeaf().
func (n *Node) Children() (left, right uint32) {
	return n.LeftRight >> 16, n.LeftRight & 0xffff
}

// SetChildren packs left/right node indices into LeftRight.
func (n *Node) SetChildren(left, right uint32) {
	n.LeftRight = (left << 16) | (right & 0xffff)
}

// Bounds returns the node's box as a geom.AABB.
func (n *Node) Bounds() geom.AABB {
	return geom.AABB{Min: n.Min, Max: n.Max}
}
