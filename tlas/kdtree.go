package tlas

import (
	"math"

	"raybvh/geom"
	remath "raybvh/math"
)

// kdNode plays two roles depending on isLeaf(): interior nodes use
// Left/Right/SplitPos and the split axis packed into Parax; leaf nodes
// use First/Count. Every node, leaf or interior, carries the cluster
// AABB (BMin/BMax, over centroids) and MinSize (componentwise minimum
// half-extent of contained instances).
type kdNode struct {
	Left, Right        uint32
	First, Count       uint32
	Parax              uint32 // (parent<<3)|axis; axis>3 marks a leaf
	SplitPos           float32
	BMin, BMax, MinSize remath.Vec3
}

func (n *kdNode) isLeaf() bool    { return (n.Parax & 7) > 3 }
func (n *kdNode) parent() uint32  { return n.Parax >> 3 }
func (n *kdNode) axis() int       { return int(n.Parax & 7) }
func (n *kdNode) center() remath.Vec3 {
	return n.BMin.Add(n.BMax).Mul(0.5)
}

// KDTree indexes the centroids of a TLAS's instance (and, during
// clustering, cluster) bounds to accelerate FindNearest — the operation
// TLAS.BuildQuick uses in place of an O(N^2) naive scan.
type KDTree struct {
	tlasNodes []Node // the TLAS's node array; read for current bounds

	Bounds  []geom.AABB // SIMD-friendly copy of bounds, indexed by tlas-node id
	TlasIdx []uint32    // permutation giving each leaf a contiguous range
	Leaf    []uint32    // tlas-node id -> kd node index containing it

	node      []kdNode
	nodePtr   uint32
	tlasCount uint32
	blasCount uint32
	freed     [2]uint32
}

// NewKDTree allocates a kd-tree sized for n instances: 4(n+1) node slots,
// and 2(n+1) entries in the arrays indexed by TLAS node id.
func NewKDTree(tlasNodes []Node, n uint32) *KDTree {
	return &KDTree{
		tlasNodes: tlasNodes,
		Bounds:    make([]geom.AABB, (n+1)*2),
		TlasIdx:   make([]uint32, (n+1)*2),
		Leaf:      make([]uint32, (n+1)*2),
		node:      make([]kdNode, (n+1)*4),
		blasCount: n,
	}
}

// Rebuild discards the current tree and rebuilds it from scratch over
// tlasNodes[1..blasCount] — the per-instance leaves TLAS.Build/BuildQuick
// seed before clustering begins.
func (t *KDTree) Rebuild() BuildStats {
	t.tlasCount = t.blasCount
	for i := uint32(1); i <= t.blasCount; i++ {
		t.TlasIdx[i-1] = i
		t.Bounds[i] = t.tlasNodes[i].Bounds()
	}
	t.node[0] = kdNode{First: 0, Count: t.blasCount, Parax: 7}
	t.nodePtr = 1
	t.subdivide(0, 0)
	t.minRefit()
	return BuildStats{Instances: t.blasCount, NodesUsed: t.nodePtr}
}

// subdivide recursively splits node idx by the dominant axis of its
// centroid-AABB extent, applying the coarse load-balancing clamp for
// large nodes.
func (t *KDTree) subdivide(idx uint32, depth int) {
	node := &t.node[idx]

	node.BMin = vecInf(1)
	node.BMax = vecInf(-1)
	node.MinSize = vecInf(1)
	for i := uint32(0); i < node.Count; i++ {
		b := t.Bounds[t.TlasIdx[node.First+i]]
		c := b.Center()
		// Half-extent of the instance's own box, not the zero-width
		// degenerate case a naive bmax-bmax would give.
		halfExtent := b.Extent().Mul(0.5)
		node.MinSize = node.MinSize.Min(halfExtent)
		node.BMin = node.BMin.Min(c)
		node.BMax = node.BMax.Max(c)
	}

	if node.Count < 2 {
		return
	}

	axis := node.BMax.Sub(node.BMin).DominantAxis()
	center := (node.BMin.Component(axis) + node.BMax.Component(axis)) * 0.5

	if node.Count > 150 {
		leftCount := 0
		for i := uint32(0); i < node.Count; i++ {
			b := t.Bounds[t.TlasIdx[node.First+i]]
			if b.Center().Component(axis) <= center {
				leftCount++
			}
		}
		ratio := float32(leftCount) / float32(node.Count)
		if ratio < 0.15 {
			ratio = 0.15
		}
		if ratio > 0.85 {
			ratio = 0.85
		}
		center = ratio*node.BMin.Component(axis) + (1-ratio)*node.BMax.Component(axis)
	}

	t.partition(idx, center, axis)
	left := &t.node[t.nodePtr]
	right := &t.node[t.nodePtr+1]
	if left.Count == 0 || right.Count == 0 {
		return // split failed, stays a leaf
	}

	leftIdx := t.nodePtr
	node.Left, node.Right = leftIdx, leftIdx+1
	t.nodePtr += 2
	node.Parax = (node.Parax &^ 7) + uint32(axis)
	node.SplitPos = center

	t.subdivide(leftIdx, depth+1)
	t.subdivide(leftIdx+1, depth+1)
}

// partition is a two-pointer scheme that tentatively writes the split
// into node[nodePtr] and node[nodePtr+1]; the caller decides whether to
// commit to them.
func (t *KDTree) partition(idx uint32, splitPos float32, axis int) {
	node := &t.node[idx]
	n := int(node.Count)
	first := int(node.First)
	last := first + n

	if n < 3 {
		last = first + 1
	} else {
		for {
			c := t.Bounds[t.TlasIdx[first]].Center().Component(axis)
			if c > splitPos {
				last--
				t.TlasIdx[first], t.TlasIdx[last] = t.TlasIdx[last], t.TlasIdx[first]
			} else {
				first++
			}
			if first >= last {
				break
			}
		}
	}

	left := &t.node[t.nodePtr]
	right := &t.node[t.nodePtr+1]
	left.First = node.First
	right.First = uint32(last)
	left.Count = right.First - left.First
	left.Parax = (idx << 3) + 7
	right.Parax = left.Parax
	right.Count = node.Count - left.Count
}

// minRefit performs the reverse-order pass populating the reverse Leaf
// map and every node's aggregate bounds.
func (t *KDTree) minRefit() {
	for i := int(t.nodePtr) - 1; i >= 0; i-- {
		node := &t.node[i]
		if node.isLeaf() {
			node.MinSize = vecInf(1)
			node.BMin = vecInf(1)
			node.BMax = vecInf(-1)
			for j := uint32(0); j < node.Count; j++ {
				idx := t.TlasIdx[node.First+j]
				t.Leaf[idx] = uint32(i)
				b := t.Bounds[idx]
				halfExtent := b.Extent().Mul(0.5)
				c := b.Center()
				node.MinSize = node.MinSize.Min(halfExtent)
				node.BMin = node.BMin.Min(c)
				node.BMax = node.BMax.Max(c)
			}
			continue
		}
		left := &t.node[node.Left]
		right := &t.node[node.Right]
		node.MinSize = left.MinSize.Min(right.MinSize)
		node.BMin = left.BMin.Min(right.BMin)
		node.BMax = left.BMax.Max(right.BMax)
	}
}

// recurseRefit walks from idx (a kd-node index) up to the root, repairing
// each ancestor's aggregate bounds from its two children.
func (t *KDTree) recurseRefit(idx uint32) {
	for {
		if idx == 0 {
			return
		}
		idx = t.node[idx].parent()
		node := &t.node[idx]
		left := &t.node[node.Left]
		right := &t.node[node.Right]
		node.MinSize = left.MinSize.Min(right.MinSize)
		node.BMin = left.BMin.Min(right.BMin)
		node.BMax = left.BMax.Max(right.BMax)
	}
}

// Add inserts tlas-node id idx (freshly seeded or freshly merged) into
// the tree, reusing the two slots freed by the most recent RemoveLeaf.
func (t *KDTree) Add(idx uint32) {
	box := t.tlasNodes[idx].Bounds()
	t.Bounds[idx] = box
	center := box.Center()
	t.TlasIdx[t.tlasCount] = idx
	t.tlasCount++

	leafIdx := t.freed[0]
	leafNode := &t.node[leafIdx]
	t.Leaf[idx] = leafIdx
	leafNode.First = t.tlasCount - 1
	leafNode.Count = 1
	leafNode.BMin, leafNode.BMax = center, center
	leafNode.MinSize = box.Extent().Mul(0.5)

	intIdx := t.freed[1]
	nidx := uint32(0)
	var pn remath.Vec3

	for {
		n := &t.node[nidx]
		if n.isLeaf() {
			if nidx == 0 {
				t.node[intIdx] = *n
				t.node[intIdx].Parax &= 7
				leafNode.Parax = 7
				sibling := &t.node[intIdx]
				for j := uint32(0); j < sibling.Count; j++ {
					t.Leaf[t.TlasIdx[sibling.First+j]] = intIdx
				}
				pn = sibling.center()
				nidx = intIdx
				intIdx = 0
				t.node[0].Parax = 0
			} else {
				parentIdx := n.parent()
				parent := &t.node[parentIdx]
				if parent.Left == nidx {
					parent.Left = intIdx
				} else {
					parent.Right = intIdx
				}
				t.node[intIdx].Parax = n.Parax &^ 7
				pn = n.center()
				n.Parax = (intIdx << 3) | 7
				leafNode.Parax = (intIdx << 3) | 7
			}

			axis := center.Sub(pn).Abs().DominantAxis()
			newInterior := &t.node[intIdx]
			newInterior.Parax += uint32(axis)
			newInterior.SplitPos = pn.Add(center).Mul(0.5).Component(axis)
			if center.Component(axis) < newInterior.SplitPos {
				newInterior.Left, newInterior.Right = leafIdx, nidx
			} else {
				newInterior.Right, newInterior.Left = leafIdx, nidx
			}
			break
		}
		// traverse toward the leaf that should receive the new instance.
		if center.Component(n.axis()) < n.SplitPos {
			nidx = n.Left
		} else {
			nidx = n.Right
		}
	}

	t.recurseRefit(t.Leaf[idx])
}

// RemoveLeaf removes tlas-node id idx from the tree, publishing exactly
// two freed slots for the next Add.
func (t *KDTree) RemoveLeaf(idx uint32) {
	toDelete := t.Leaf[idx]
	if t.node[toDelete].Count > 1 {
		n := &t.node[toDelete]
		for j := uint32(0); j < n.Count; j++ {
			if t.TlasIdx[n.First+j] == idx {
				t.TlasIdx[n.First+j] = t.TlasIdx[n.First+n.Count-1]
				n.Count--
				break
			}
		}
		t.freed[0] = t.nodePtr
		t.nodePtr++
		t.freed[1] = t.nodePtr
		t.nodePtr++
		return
	}

	parentIdx := t.node[toDelete].parent()
	parent := &t.node[parentIdx]
	var sibling uint32
	if parent.Left == toDelete {
		sibling = parent.Right
	} else {
		sibling = parent.Left
	}
	t.node[sibling].Parax = (parent.Parax &^ 7) | (t.node[sibling].Parax & 7)
	*parent = t.node[sibling]
	if parent.isLeaf() {
		for j := uint32(0); j < parent.Count; j++ {
			t.Leaf[t.TlasIdx[parent.First+j]] = parentIdx
		}
	} else {
		t.node[parent.Left].Parax = (parentIdx << 3) | (t.node[parent.Left].Parax & 7)
		t.node[parent.Right].Parax = (parentIdx << 3) | (t.node[parent.Right].Parax & 7)
	}
	t.freed[0] = sibling
	t.freed[1] = toDelete
}

// FindNearest returns the instance B != A minimizing the surface area of
// AABB(A) union AABB(B), via best-first search with lower-bound pruning.
// startB/startSA seed the search (callers may pass a prior guess);
// seeding with +Inf guarantees the true optimum.
func (t *KDTree) FindNearest(a uint32, startB uint32, startSA float32) (bestB uint32, bestSA float32) {
	boxA := t.Bounds[a]
	pa := boxA.Center()
	extentA := boxA.Extent()
	halfExtentA := extentA.Mul(0.5)

	bestB = startB
	bestSA = startSA

	var stack [60]uint32
	stackPtr := 0
	n := uint32(0)

	for {
		for {
			node := &t.node[n]
			if node.isLeaf() {
				for i := uint32(0); i < node.Count; i++ {
					b := t.TlasIdx[node.First+i]
					if b == a {
						continue
					}
					merged := geom.Union(boxA, t.Bounds[b])
					sa := merged.Area()
					if sa < bestSA {
						bestSA = sa
						bestB = b
					}
				}
				break
			}

			near, far := node.Left, node.Right
			if pa.Component(node.axis()) > node.SplitPos {
				near, far = far, near
			}
			saNear := lowerBoundSA(pa, extentA, halfExtentA, &t.node[near])
			saFar := lowerBoundSA(pa, extentA, halfExtentA, &t.node[far])

			visitNear := saNear < bestSA
			visitFar := saFar < bestSA
			switch {
			case !visitNear && !visitFar:
				goto popStack
			case visitNear && visitFar:
				stack[stackPtr] = far
				stackPtr++
				n = near
			case visitNear:
				n = near
			default:
				n = far
			}
			continue
		popStack:
			break
		}
		if stackPtr == 0 {
			break
		}
		stackPtr--
		n = stack[stackPtr]
	}

	return bestB, bestSA
}

// lowerBoundSA computes the lower bound on the merged surface area
// achievable for any instance inside node's cluster, relative to A's
// centroid/extent.
func lowerBoundSA(pa, extentA, halfExtentA remath.Vec3, node *kdNode) float32 {
	v := node.BMin.Sub(pa).Max(pa.Sub(node.BMax)).Max(remath.Vec3{})
	d := extentA.Max(v.Sub(node.MinSize.Add(halfExtentA)))
	return d.X*d.Y + d.Y*d.Z + d.Z*d.X
}

func vecInf(sign float32) remath.Vec3 {
	v := float32(math.Inf(1)) * sign
	return remath.Vec3{X: v, Y: v, Z: v}
}

// --- read-only accessors for tests ---

// NodeCount returns how many kd-tree node slots are currently in use.
func (t *KDTree) NodeCount() uint32 { return t.nodePtr }

// IsLeafNode reports whether kd node i is a leaf.
func (t *KDTree) IsLeafNode(i uint32) bool { return t.node[i].isLeaf() }

// NodeChildren returns the (left, right) children of interior node i.
func (t *KDTree) NodeChildren(i uint32) (uint32, uint32) {
	return t.node[i].Left, t.node[i].Right
}

// NodeAggregate returns node i's cluster bounds and minimum half-extent.
func (t *KDTree) NodeAggregate(i uint32) (bmin, bmax, minSize remath.Vec3) {
	n := &t.node[i]
	return n.BMin, n.BMax, n.MinSize
}

// NodeLeafRange returns the tlasIdx range [first, first+count) for leaf i.
func (t *KDTree) NodeLeafRange(i uint32) (first, count uint32) {
	n := &t.node[i]
	return n.First, n.Count
}
