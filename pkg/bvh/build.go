package bvh

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/df07/go-bvh-pathtracer/log"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// ErrNoObjects is returned when a tree is built from an empty object list
var ErrNoObjects = errors.New("bvh: no scene objects")

const (
	// numBuckets is the number of equal width centroid bins evaluated by SAH
	numBuckets = 12

	// Ranges with more objects than this are always split, even when SAH
	// prefers a leaf.
	maxLeafObjects = 225

	// Ranges this small are split at the median without binning.
	smallRange = 4

	// traversalCost is the SAH cost of visiting an interior node relative
	// to one triangle test.
	traversalCost = 0.125

	// stackSize bounds the traversal stack, so the build never produces a
	// tree deeper than this.
	stackSize = 64
)

// Strategy selects how ranges are split during the build
type Strategy int

const (
	// SAH bins centroids into buckets and picks the cheapest split
	SAH Strategy = iota
	// Median sorts by centroid and splits into equal halves
	Median
)

// String returns the strategy name
func (s Strategy) String() string {
	switch s {
	case SAH:
		return "sah"
	case Median:
		return "median"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "sah":
		return SAH, nil
	case "median":
		return Median, nil
	default:
		return SAH, fmt.Errorf("bvh: unknown strategy %q", name)
	}
}

// Object is the build input for one scene object: its world space bounds
// and the number of triangles, which weights the SAH cost.
type Object struct {
	Bounds    core.BoundingBox
	Triangles int
}

// primitiveInfo is the per-object state reordered during partitioning
type primitiveInfo struct {
	index     int
	bounds    core.BoundingBox
	centroid  core.Vector
	triangles int
}

// buildNode is the transient tree produced by the recursive build. A node
// with count > 0 is a leaf covering ordered[first:first+count].
type buildNode struct {
	bounds   core.BoundingBox
	children [2]*buildNode
	axis     int
	first    int
	count    int
}

type bucket struct {
	count  int
	bounds core.BoundingBox
}

type builder struct {
	logger   log.Logger
	strategy Strategy
	info     []primitiveInfo
	ordered  []int

	totalNodes int
	leaves     int
	maxDepth   int
}

// Build partitions the objects into a BVH and flattens it into a depth-first
// array. The returned tree references objects by their index in the input.
func Build(objects []Object, strategy Strategy) (*Tree, error) {
	if len(objects) == 0 {
		return nil, ErrNoObjects
	}

	b := &builder{
		logger:   log.New("bvh"),
		strategy: strategy,
		info:     make([]primitiveInfo, len(objects)),
		ordered:  make([]int, 0, len(objects)),
	}
	for i, obj := range objects {
		b.info[i] = primitiveInfo{
			index:     i,
			bounds:    obj.Bounds,
			centroid:  obj.Bounds.Centroid(),
			triangles: max(obj.Triangles, 1),
		}
	}

	start := time.Now()
	root := b.build(0, len(objects), 0)

	nodes := make([]LinearNode, 0, b.totalNodes)
	flatten(root, &nodes)

	b.logger.Debugf(
		"%s build time: %d ms, objects: %d, nodes: %d, leaves: %d, max depth: %d",
		strategy, time.Since(start).Milliseconds(), len(objects), len(nodes), b.leaves, b.maxDepth,
	)

	return &Tree{Nodes: nodes, Indices: b.ordered}, nil
}

// build creates the subtree for info[start:end]
func (b *builder) build(start, end, depth int) *buildNode {
	b.totalNodes++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	bounds := core.EmptyBox()
	for i := start; i < end; i++ {
		bounds = bounds.Union(b.info[i].bounds)
	}

	count := end - start
	if count == 1 || depth >= stackSize-1 {
		return b.leaf(bounds, start, end)
	}

	centroidBounds := core.EmptyBox()
	for i := start; i < end; i++ {
		centroidBounds = centroidBounds.UnionPoint(b.info[i].centroid)
	}
	axis := centroidBounds.MaximumExtent()
	if centroidBounds.Max().Axis(axis) == centroidBounds.Min().Axis(axis) {
		// all centroids coincide, no split separates them
		return b.leaf(bounds, start, end)
	}

	var mid int
	if count <= smallRange || b.strategy == Median {
		mid = b.splitEqual(start, end, axis)
	} else {
		var split bool
		mid, split = b.splitSAH(start, end, axis, bounds, centroidBounds)
		if !split {
			return b.leaf(bounds, start, end)
		}
	}

	left := b.build(start, mid, depth+1)
	right := b.build(mid, end, depth+1)
	return &buildNode{
		bounds:   left.bounds.Union(right.bounds),
		children: [2]*buildNode{left, right},
		axis:     axis,
	}
}

func (b *builder) leaf(bounds core.BoundingBox, start, end int) *buildNode {
	b.leaves++
	first := len(b.ordered)
	for i := start; i < end; i++ {
		b.ordered = append(b.ordered, b.info[i].index)
	}
	return &buildNode{bounds: bounds, first: first, count: end - start}
}

// splitEqual sorts the range by centroid and returns the median index
func (b *builder) splitEqual(start, end, axis int) int {
	rng := b.info[start:end]
	sort.SliceStable(rng, func(i, j int) bool {
		return rng[i].centroid.Axis(axis) < rng[j].centroid.Axis(axis)
	})
	return start + (end-start)/2
}

// splitSAH bins the range into buckets along axis and partitions it at the
// cheapest bucket boundary. It returns false when a leaf is cheaper.
func (b *builder) splitSAH(start, end, axis int, bounds, centroidBounds core.BoundingBox) (int, bool) {
	parentArea := bounds.SurfaceArea()
	if parentArea <= 0 {
		return b.splitEqual(start, end, axis), true
	}

	var buckets [numBuckets]bucket
	for i := range buckets {
		buckets[i].bounds = core.EmptyBox()
	}
	leafCost := 0
	for i := start; i < end; i++ {
		bi := bucketIndex(centroidBounds, b.info[i].centroid, axis)
		buckets[bi].count += b.info[i].triangles
		buckets[bi].bounds = buckets[bi].bounds.Union(b.info[i].bounds)
		leafCost += b.info[i].triangles
	}

	minCost := core.Infinity
	minBucket := 0
	for split := 0; split < numBuckets-1; split++ {
		if cost := splitCost(buckets[:], split, parentArea); cost < minCost {
			minCost = cost
			minBucket = split
		}
	}

	if end-start <= maxLeafObjects && minCost >= float32(leafCost) {
		return 0, false
	}

	mid := b.partition(start, end, func(p primitiveInfo) bool {
		return bucketIndex(centroidBounds, p.centroid, axis) <= minBucket
	})
	if mid == start || mid == end {
		return b.splitEqual(start, end, axis), true
	}
	return mid, true
}

// splitCost estimates the SAH cost of splitting after bucket split
func splitCost(buckets []bucket, split int, parentArea float32) float32 {
	left, right := core.EmptyBox(), core.EmptyBox()
	countLeft, countRight := 0, 0
	for i := 0; i <= split; i++ {
		left = left.Union(buckets[i].bounds)
		countLeft += buckets[i].count
	}
	for i := split + 1; i < len(buckets); i++ {
		right = right.Union(buckets[i].bounds)
		countRight += buckets[i].count
	}
	return traversalCost +
		(float32(countLeft)*left.SurfaceArea()+float32(countRight)*right.SurfaceArea())/parentArea
}

func bucketIndex(centroidBounds core.BoundingBox, centroid core.Vector, axis int) int {
	bi := int(numBuckets * centroidBounds.Offset(centroid).Axis(axis))
	return min(max(bi, 0), numBuckets-1)
}

// partition stably moves the objects matching left to the front of the range
// and returns the first index of the right side
func (b *builder) partition(start, end int, left func(primitiveInfo) bool) int {
	rng := b.info[start:end]
	right := make([]primitiveInfo, 0, len(rng))
	n := 0
	for _, p := range rng {
		if left(p) {
			rng[n] = p
			n++
		} else {
			right = append(right, p)
		}
	}
	copy(rng[n:], right)
	return start + n
}

// flatten writes node and its subtree in depth-first pre-order and returns
// the array index of node
func flatten(node *buildNode, nodes *[]LinearNode) int {
	offset := len(*nodes)
	*nodes = append(*nodes, LinearNode{Bounds: node.bounds})

	if node.count > 0 {
		(*nodes)[offset].PrimOffset = node.first
		(*nodes)[offset].NumPrims = node.count
		return offset
	}

	(*nodes)[offset].Axis = node.axis
	flatten(node.children[0], nodes)
	(*nodes)[offset].SecondChildOffset = flatten(node.children[1], nodes)
	return offset
}
