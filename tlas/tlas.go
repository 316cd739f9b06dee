package tlas

import (
	"fmt"
	"math"

	"raybvh/bvh"
	"raybvh/geom"
)

// TLAS is the top-level acceleration structure over a set of BVH
// instances. The node array is sized for 2N nodes: node 0 reserved for
// the root, plus N leaves and up to N-1 interior nodes from agglomerative
// clustering.
type TLAS struct {
	instances []*bvh.Instance
	Nodes     []Node
	NodesUsed uint32

	kd *KDTree
}

// BuildStats summarizes a completed Build/BuildQuick call: enough to log
// or compare build quality without the acceleration structures themselves
// carrying a clock.
type BuildStats struct {
	Instances uint32
	NodesUsed uint32
}

// NewTLAS allocates a TLAS over instances but does not build it; call
// Build or BuildQuick.
func NewTLAS(instances []*bvh.Instance) *TLAS {
	n := uint32(len(instances))
	t := &TLAS{
		instances: instances,
		Nodes:     make([]Node, 2*n),
	}
	return t
}

// seedLeaves resets NodesUsed and populates Nodes[1..N] with one leaf per
// instance, leaving Nodes[0] (the eventual root) untouched. Both Build and
// BuildQuick start from this state.
func (t *TLAS) seedLeaves() []uint32 {
	n := uint32(len(t.instances))
	nodeIdx := make([]uint32, n)
	t.NodesUsed = 1
	for i := uint32(0); i < n; i++ {
		nodeIdx[i] = t.NodesUsed
		t.Nodes[t.NodesUsed].Min = t.instances[i].Bounds.Min
		t.Nodes[t.NodesUsed].Max = t.instances[i].Bounds.Max
		t.Nodes[t.NodesUsed].BLAS = i
		t.Nodes[t.NodesUsed].LeftRight = 0 // leaf
		t.NodesUsed++
	}
	return nodeIdx
}

// Build constructs the TLAS by naive O(N^2) agglomerative clustering:
// repeatedly merge the two active nodes whose combined bounding box has
// the smallest surface area, until one node remains. This is the
// "quality" build; for large instance counts prefer BuildQuick.
func (t *TLAS) Build() BuildStats {
	n := uint32(len(t.instances))
	if n == 0 {
		t.NodesUsed = 1
		return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
	}
	if n == 1 {
		nodeIdx := t.seedLeaves()
		t.Nodes[0] = t.Nodes[nodeIdx[0]]
		return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
	}

	nodeIdx := t.seedLeaves()
	nodesLeft := n

	a := uint32(0)
	b := t.findBestMatch(nodeIdx, nodesLeft, a)
	for nodesLeft > 1 {
		c := t.findBestMatch(nodeIdx, nodesLeft, b)
		if a == c {
			// mutual best match: merge a and b into a new interior node
			nodeIdxA, nodeIdxB := nodeIdx[a], nodeIdx[b]
			left, right := &t.Nodes[nodeIdxA], &t.Nodes[nodeIdxB]
			newIdx := t.NodesUsed
			t.NodesUsed++
			merged := &t.Nodes[newIdx]
			merged.Min = left.Min.Min(right.Min)
			merged.Max = left.Max.Max(right.Max)
			merged.SetChildren(nodeIdxA, nodeIdxB)

			nodeIdx[a] = newIdx
			nodeIdx[b] = nodeIdx[nodesLeft-1]
			nodesLeft--
			a = 0
			b = t.findBestMatch(nodeIdx, nodesLeft, a)
		} else {
			a, b = b, c
		}
	}
	t.Nodes[0] = t.Nodes[nodeIdx[0]]
	return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
}

// findBestMatch scans the nodesLeft active entries in nodeIdx and returns
// the index (into nodeIdx, not into Nodes) of the node whose union with
// nodeIdx[a] has the smallest surface area.
func (t *TLAS) findBestMatch(nodeIdx []uint32, nodesLeft, a uint32) uint32 {
	smallest := float32(math.Inf(1))
	best := uint32(math.MaxUint32)
	boxA := t.Nodes[nodeIdx[a]].Bounds()
	for b := uint32(0); b < nodesLeft; b++ {
		if b == a {
			continue
		}
		boxB := t.Nodes[nodeIdx[b]].Bounds()
		sa := geom.Union(boxA, boxB).Area()
		if sa < smallest {
			smallest = sa
			best = b
		}
	}
	return best
}

// BuildQuick builds the TLAS the same way Build does — agglomerative
// clustering to minimize merged surface area — but finds each merge
// candidate through a kd-tree over the active node centroids instead of
// an O(N^2) scan. The kd-tree search returns the same nearest neighbor a
// full scan would; the resulting tree can still differ from Build's
// because, after each merge, the search continues from the merged node
// instead of restarting at the first active node.
func (t *TLAS) BuildQuick() BuildStats {
	n := uint32(len(t.instances))
	if n == 0 {
		t.NodesUsed = 1
		return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
	}
	if n == 1 {
		nodeIdx := t.seedLeaves()
		t.Nodes[0] = t.Nodes[nodeIdx[0]]
		return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
	}

	t.seedLeaves()
	if t.kd == nil {
		t.kd = NewKDTree(t.Nodes, n)
	}
	t.kd.Rebuild()

	nodesLeft := n
	a := uint32(1)
	b, _ := t.kd.FindNearest(a, 0, float32(math.Inf(1)))

	for nodesLeft > 1 {
		c, _ := t.kd.FindNearest(b, 0, float32(math.Inf(1)))
		if a == c {
			left, right := &t.Nodes[a], &t.Nodes[b]
			newIdx := t.NodesUsed
			t.NodesUsed++
			merged := &t.Nodes[newIdx]
			merged.Min = left.Min.Min(right.Min)
			merged.Max = left.Max.Max(right.Max)
			merged.SetChildren(a, b)

			t.kd.RemoveLeaf(a)
			t.kd.RemoveLeaf(b)
			t.kd.Add(newIdx)
			nodesLeft--

			if nodesLeft == 1 {
				a = newIdx
				break
			}
			a = newIdx
			b, _ = t.kd.FindNearest(a, 0, float32(math.Inf(1)))
		} else {
			a, b = b, c
		}
	}
	t.Nodes[0] = t.Nodes[a]
	return BuildStats{Instances: n, NodesUsed: t.NodesUsed}
}

// Intersect traverses the TLAS for the closest hit along ray, dispatching
// to the underlying BLAS instance's own Intersect at each leaf. ray is
// consumed and restored to world space by every instance visited.
func (t *TLAS) Intersect(ray *geom.Ray) {
	if t.NodesUsed == 0 {
		return
	}
	var stack [64]uint32
	stackPtr := 0
	nodeIdx := uint32(0)

	for {
		node := &t.Nodes[nodeIdx]
		if node.IsLeaf() {
			t.instances[node.BLAS].Intersect(ray)
			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}

		left, right := node.Children()
		leftNode, rightNode := &t.Nodes[left], &t.Nodes[right]
		distLeft := ray.IntersectAABB(leftNode.Bounds())
		distRight := ray.IntersectAABB(rightNode.Bounds())

		near, far := left, right
		nearDist, farDist := distLeft, distRight
		if distLeft > distRight {
			near, far = far, near
			nearDist, farDist = farDist, nearDist
		}

		if math.IsInf(float64(nearDist), 1) {
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

// KDTree returns the auxiliary kd-tree index built by BuildQuick, or nil
// if the TLAS was built with Build (or not built at all). Exposed for
// tools that want to inspect the index directly, such as a debug viewer.
func (t *TLAS) KDTree() *KDTree {
	return t.kd
}

// Root returns the world-space bounds of the whole TLAS.
func (t *TLAS) Root() geom.AABB {
	return t.Nodes[0].Bounds()
}

// Validate reports an error if the tree's node count exceeds its
// allocated capacity — a caller adding instances after construction
// without reallocating Nodes is the only way to trigger this.
func (t *TLAS) Validate() error {
	if int(t.NodesUsed) > len(t.Nodes) {
		return fmt.Errorf("tlas: nodes used %d exceeds capacity %d", t.NodesUsed, len(t.Nodes))
	}
	return nil
}
