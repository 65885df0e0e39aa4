package bvh

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// LinearNode is one entry of the flattened tree. NumPrims > 0 marks a leaf
// covering Indices[PrimOffset:PrimOffset+NumPrims]. An interior node has
// NumPrims == 0, its first child in the next slot and its second child at
// SecondChildOffset.
type LinearNode struct {
	Bounds            core.BoundingBox
	PrimOffset        int
	SecondChildOffset int
	NumPrims          int
	Axis              int
}

// IsLeaf reports whether the node holds objects
func (n *LinearNode) IsLeaf() bool {
	return n.NumPrims > 0
}

// Tree is a flattened BVH. It is never modified after Build and is shared
// read-only by all render workers.
type Tree struct {
	Nodes   []LinearNode
	Indices []int // object index permutation referenced by leaves
}

// ObjectTest intersects the ray with one object, accepting only hits closer
// than closest. It returns the hit distance and whether the object was hit.
type ObjectTest func(object int, closest float32) (float32, bool)

// Intersect walks the tree front to back and calls test for every object in
// a leaf whose box the ray enters before the closest hit so far. It returns
// the closest accepted distance, which never exceeds tMax.
func (t *Tree) Intersect(origin, dir core.Vector, tMax float32, test ObjectTest) (float32, bool) {
	invDir := dir.Reciprocal()
	dirIsNeg := core.DirectionSign(invDir)

	closest := tMax
	hit := false

	var stack [stackSize]int
	toVisit := 0
	current := 0
	for {
		node := &t.Nodes[current]
		if node.Bounds.IntersectP(origin, invDir, dirIsNeg, closest) {
			if node.NumPrims > 0 {
				for i := 0; i < node.NumPrims; i++ {
					if d, ok := test(t.Indices[node.PrimOffset+i], closest); ok && d < closest {
						closest = d
						hit = true
					}
				}
				if toVisit == 0 {
					break
				}
				toVisit--
				current = stack[toVisit]
			} else if dirIsNeg[node.Axis] == 1 {
				// the second child holds the larger coordinates, visit it first
				stack[toVisit] = current + 1
				toVisit++
				current = node.SecondChildOffset
			} else {
				stack[toVisit] = node.SecondChildOffset
				toVisit++
				current = current + 1
			}
		} else {
			if toVisit == 0 {
				break
			}
			toVisit--
			current = stack[toVisit]
		}
	}
	return closest, hit
}

// Stats describes the shape of a tree
type Stats struct {
	Nodes          int
	Leaves         int
	Objects        int
	MaxDepth       int
	AvgLeafDepth   float64
	MaxLeafObjects int
	AvgLeafObjects float64
	// SAHCost is the expected cost of a random ray relative to one triangle
	// test, using the root surface area as the reference.
	SAHCost float64
}

// Stats walks the tree and collects its statistics. triangles returns the
// triangle count of an object and weights the SAH cost.
func (t *Tree) Stats(triangles func(object int) int) Stats {
	var s Stats
	if len(t.Nodes) == 0 {
		return s
	}
	rootArea := float64(t.Nodes[0].Bounds.SurfaceArea())
	t.collectStats(0, 0, rootArea, triangles, &s)
	if s.Leaves > 0 {
		s.AvgLeafDepth /= float64(s.Leaves)
		s.AvgLeafObjects = float64(s.Objects) / float64(s.Leaves)
	}
	return s
}

func (t *Tree) collectStats(index, depth int, rootArea float64, triangles func(int) int, s *Stats) {
	node := &t.Nodes[index]
	s.Nodes++
	s.MaxDepth = max(s.MaxDepth, depth)

	areaRatio := 1.0
	if rootArea > 0 {
		areaRatio = float64(node.Bounds.SurfaceArea()) / rootArea
	}

	if node.IsLeaf() {
		s.Leaves++
		s.Objects += node.NumPrims
		s.AvgLeafDepth += float64(depth)
		s.MaxLeafObjects = max(s.MaxLeafObjects, node.NumPrims)
		tris := 0
		for i := 0; i < node.NumPrims; i++ {
			tris += triangles(t.Indices[node.PrimOffset+i])
		}
		s.SAHCost += areaRatio * float64(tris)
		return
	}

	s.SAHCost += areaRatio * traversalCost
	t.collectStats(index+1, depth+1, rootArea, triangles, s)
	t.collectStats(node.SecondChildOffset, depth+1, rootArea, triangles, s)
}

// Validate checks the flattened layout: every interior node has its first
// child in the next slot and its second child after the first subtree, a
// depth-first walk visits every slot exactly once, and every object index
// appears in exactly one leaf.
func (t *Tree) Validate(numObjects int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("bvh: empty tree")
	}
	if len(t.Indices) != numObjects {
		return fmt.Errorf("bvh: %d indices for %d objects", len(t.Indices), numObjects)
	}

	seen := make([]bool, numObjects)
	for _, idx := range t.Indices {
		if idx < 0 || idx >= numObjects {
			return fmt.Errorf("bvh: object index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("bvh: object index %d referenced twice", idx)
		}
		seen[idx] = true
	}

	end, err := t.validateNode(0, 0)
	if err != nil {
		return err
	}
	if end != len(t.Nodes) {
		return fmt.Errorf("bvh: depth-first walk visited %d of %d nodes", end, len(t.Nodes))
	}
	return nil
}

// validateNode checks the subtree at index and returns the slot following it
func (t *Tree) validateNode(index, depth int) (int, error) {
	if index >= len(t.Nodes) {
		return 0, fmt.Errorf("bvh: node index %d out of range", index)
	}
	if depth >= stackSize {
		return 0, fmt.Errorf("bvh: tree deeper than %d", stackSize)
	}

	node := &t.Nodes[index]
	if node.IsLeaf() {
		if node.PrimOffset < 0 || node.PrimOffset+node.NumPrims > len(t.Indices) {
			return 0, fmt.Errorf("bvh: leaf %d range [%d,%d) out of bounds", index, node.PrimOffset, node.PrimOffset+node.NumPrims)
		}
		return index + 1, nil
	}

	if node.SecondChildOffset <= index+1 {
		return 0, fmt.Errorf("bvh: node %d second child %d not after first child", index, node.SecondChildOffset)
	}
	next, err := t.validateNode(index+1, depth+1)
	if err != nil {
		return 0, err
	}
	if next != node.SecondChildOffset {
		return 0, fmt.Errorf("bvh: node %d second child at %d, first subtree ends at %d", index, node.SecondChildOffset, next)
	}
	first, second := &t.Nodes[index+1], &t.Nodes[node.SecondChildOffset]
	if !node.Bounds.ContainsBox(first.Bounds) || !node.Bounds.ContainsBox(second.Bounds) {
		return 0, fmt.Errorf("bvh: node %d does not enclose its children", index)
	}
	return t.validateNode(node.SecondChildOffset, depth+1)
}
