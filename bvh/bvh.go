package bvh

import (
	"math"

	"raybvh/geom"
)

// BVH is the bottom-level acceleration structure over a single Mesh's
// triangles, built with binned SAH. The node array is sized once, at
// construction, to the worst-case 2*triCount, the triangle-index array to
// triCount; neither is reallocated during Build.
type BVH struct {
	mesh *Mesh

	Nodes     []Node
	TriIdx    []uint32
	NodesUsed uint32

	// UseSIMD is a no-op toggle: this package ships one scalar AABB-test
	// implementation, kept as a field for API symmetry with other
	// acceleration-structure options.
	UseSIMD bool
}

// NewBVH allocates node storage for mesh but does not build the tree; call
// Build to do that.
func NewBVH(mesh *Mesh) *BVH {
	n := len(mesh.Tri)
	b := &BVH{
		mesh:   mesh,
		Nodes:  make([]Node, 2*n),
		TriIdx: make([]uint32, n),
	}
	for i := range b.TriIdx {
		b.TriIdx[i] = uint32(i)
	}
	return b
}

// Build constructs the tree from scratch over all of mesh.Tri.
func (b *BVH) Build() {
	n := len(b.mesh.Tri)
	if n == 0 {
		b.NodesUsed = 1
		return
	}
	// node 1 is reserved so sibling pairs stay aligned (left child at an
	// even index, right at odd).
	b.NodesUsed = 2
	root := &b.Nodes[0]
	root.LeftFirst = 0
	root.TriCount = uint32(n)
	b.updateNodeBounds(0)
	b.subdivide(0)
}

// Refit updates internal-node bounds in place without changing topology:
// O(N), reverse node order, leaves recompute from triangles and interiors
// take the union of their children.
func (b *BVH) Refit() {
	for i := int(b.NodesUsed) - 1; i >= 0; i-- {
		node := &b.Nodes[i]
		if node.IsLeaf() {
			b.updateNodeBounds(uint32(i))
			continue
		}
		left := &b.Nodes[node.LeftFirst]
		right := &b.Nodes[node.LeftFirst+1]
		node.Min = left.Min.Min(right.Min)
		node.Max = left.Max.Max(right.Max)
	}
}

func (b *BVH) updateNodeBounds(nodeIdx uint32) {
	node := &b.Nodes[nodeIdx]
	box := geom.NewEmptyAABB()
	first := node.LeftFirst
	for i := uint32(0); i < node.TriCount; i++ {
		tri := b.mesh.Tri[b.TriIdx[first+i]]
		box.Grow(tri.V0)
		box.Grow(tri.V1)
		box.Grow(tri.V2)
	}
	node.Min, node.Max = box.Min, box.Max
}

type bin struct {
	bounds geom.AABB
	count  int
}

// findBestSplitPlane implements binned SAH over the node's triangles on
// all three axes, returning the winning axis, split position, and cost.
// Degenerate axes (all centroids equal) are skipped; if every axis is
// degenerate the returned cost is +Inf and subdivide falls back to a
// leaf.
func (b *BVH) findBestSplitPlane(node *Node) (axis int, splitPos float32, bestCost float32) {
	bestCost = float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		cMin, cMax := float32(math.Inf(1)), float32(math.Inf(-1))
		first := node.LeftFirst
		for i := uint32(0); i < node.TriCount; i++ {
			c := b.mesh.Tri[b.TriIdx[first+i]].Centroid.Component(a)
			if c < cMin {
				cMin = c
			}
			if c > cMax {
				cMax = c
			}
		}
		if cMin == cMax {
			continue
		}

		var bins [Bins]bin
		for i := range bins {
			bins[i].bounds = geom.NewEmptyAABB()
		}
		scale := float32(Bins) / (cMax - cMin)
		for i := uint32(0); i < node.TriCount; i++ {
			tri := b.mesh.Tri[b.TriIdx[first+i]]
			binIdx := int((tri.Centroid.Component(a) - cMin) * scale)
			if binIdx >= Bins {
				binIdx = Bins - 1
			}
			bins[binIdx].count++
			bins[binIdx].bounds.Grow(tri.V0)
			bins[binIdx].bounds.Grow(tri.V1)
			bins[binIdx].bounds.Grow(tri.V2)
		}

		var leftCount, rightCount [Bins - 1]int
		var leftArea, rightArea [Bins - 1]float32
		leftBox, rightBox := geom.NewEmptyAABB(), geom.NewEmptyAABB()
		leftSum, rightSum := 0, 0
		for i := 0; i < Bins-1; i++ {
			leftSum += bins[i].count
			leftCount[i] = leftSum
			leftBox.GrowBox(bins[i].bounds)
			leftArea[i] = leftBox.Area()

			j := Bins - 2 - i
			rightSum += bins[j+1].count
			rightCount[j] = rightSum
			rightBox.GrowBox(bins[j+1].bounds)
			rightArea[j] = rightBox.Area()
		}

		binWidth := (cMax - cMin) / float32(Bins)
		for i := 0; i < Bins-1; i++ {
			cost := leftArea[i]*float32(leftCount[i]) + rightArea[i]*float32(rightCount[i])
			if cost < bestCost {
				bestCost = cost
				axis = a
				splitPos = cMin + float32(i+1)*binWidth
			}
		}
	}
	return
}

// subdivide recursively splits the node at nodeIdx if a binned-SAH plane
// beats the cost of keeping it a leaf.
func (b *BVH) subdivide(nodeIdx uint32) {
	node := &b.Nodes[nodeIdx]

	axis, splitPos, cost := b.findBestSplitPlane(node)
	if cost >= node.CalculateNodeCost() {
		return // stays a leaf
	}

	first, count := node.LeftFirst, node.TriCount
	i, j := int(first), int(first+count-1)
	for i <= j {
		if b.mesh.Tri[b.TriIdx[i]].Centroid.Component(axis) < splitPos {
			i++
		} else {
			b.TriIdx[i], b.TriIdx[j] = b.TriIdx[j], b.TriIdx[i]
			j--
		}
	}

	leftCount := uint32(i) - first
	if leftCount == 0 || leftCount == count {
		return // empty split, stays a leaf
	}

	leftIdx := b.NodesUsed
	rightIdx := b.NodesUsed + 1
	b.NodesUsed += 2

	b.Nodes[leftIdx].LeftFirst = first
	b.Nodes[leftIdx].TriCount = leftCount
	b.Nodes[rightIdx].LeftFirst = first + leftCount
	b.Nodes[rightIdx].TriCount = count - leftCount

	node.LeftFirst = leftIdx
	node.TriCount = 0

	b.updateNodeBounds(leftIdx)
	b.updateNodeBounds(rightIdx)
	b.subdivide(leftIdx)
	b.subdivide(rightIdx)
}

// Intersect traverses the tree for the closest hit along ray, stamping
// instanceIdx and the winning triangle index into ray.Hit.InstPrim.
// Iterative, stack-based; descends into the nearer child first and only
// pushes the farther child if it can still beat the current closest hit.
func (b *BVH) Intersect(ray *geom.Ray, instanceIdx uint32) {
	if b.NodesUsed == 0 || len(b.mesh.Tri) == 0 {
		return
	}
	var stack [64]uint32
	stackPtr := 0
	nodeIdx := uint32(0)

	for {
		node := &b.Nodes[nodeIdx]
		if node.IsLeaf() {
			first := node.LeftFirst
			for i := uint32(0); i < node.TriCount; i++ {
				triIdx := b.TriIdx[first+i]
				if geom.IntersectTriangle(ray, b.mesh.Tri[triIdx]) {
					ray.Hit.InstPrim = geom.PackInstPrim(instanceIdx, triIdx)
				}
			}
			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}

		left := &b.Nodes[node.LeftFirst]
		right := &b.Nodes[node.LeftFirst+1]
		distLeft := ray.IntersectAABB(left.Bounds())
		distRight := ray.IntersectAABB(right.Bounds())

		near, far := node.LeftFirst, node.LeftFirst+1
		nearDist, farDist := distLeft, distRight
		if distLeft > distRight {
			near, far = far, near
			nearDist, farDist = farDist, nearDist
		}

		if nearDist == float32(math.Inf(1)) {
			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}
		if farDist < ray.Hit.T {
			stack[stackPtr] = far
			stackPtr++
		}
		nodeIdx = near
	}
}
