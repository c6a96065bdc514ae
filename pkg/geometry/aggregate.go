package geometry

import (
	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
)

// aggregateNode is a node of the bounding volume hierarchy
type aggregateNode struct {
	bounds core.Bounds3
	left   *aggregateNode
	right  *aggregateNode
	shapes []Shape // leaf shapes (nil for internal nodes)
}

// Aggregate is a bounding volume hierarchy over world space shapes. It owns
// the closest-hit contract: each accepted hit shrinks the ray's TMax for the
// shapes tested after it.
type Aggregate struct {
	root *aggregateNode
	size int
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// NewAggregate builds a hierarchy over shapes using median splits on the longest axis
func NewAggregate(shapes []Shape) *Aggregate {
	if len(shapes) == 0 {
		return &Aggregate{}
	}
	// Copy so partitioning never reorders the caller's slice
	shapesCopy := append([]Shape(nil), shapes...)
	return &Aggregate{root: buildAggregate(shapesCopy), size: len(shapes)}
}

func buildAggregate(shapes []Shape) *aggregateNode {
	bounds := core.EmptyBounds3()
	for _, s := range shapes {
		bounds = bounds.Union(s.WorldBound())
	}

	if len(shapes) <= leafThreshold {
		return &aggregateNode{bounds: bounds, shapes: shapes}
	}

	axis, splitPos, ok := medianSplit(bounds)
	if !ok {
		return &aggregateNode{bounds: bounds, shapes: shapes}
	}

	leftShapes, rightShapes := partitionShapes(shapes, axis, splitPos)
	if len(leftShapes) == 0 || len(rightShapes) == 0 {
		return &aggregateNode{bounds: bounds, shapes: shapes}
	}

	return &aggregateNode{
		bounds: bounds,
		left:   buildAggregate(leftShapes),
		right:  buildAggregate(rightShapes),
	}
}

// medianSplit picks the midpoint of the longest axis
func medianSplit(bounds core.Bounds3) (int, float64, bool) {
	axis := bounds.MaximumExtent()
	minVal, maxVal := bounds.Min.Component(axis), bounds.Max.Component(axis)
	if maxVal <= minVal {
		return -1, 0, false
	}
	return axis, (minVal + maxVal) * 0.5, true
}

func partitionShapes(shapes []Shape, axis int, splitPos float64) ([]Shape, []Shape) {
	var leftShapes, rightShapes []Shape
	for _, s := range shapes {
		if s.WorldBound().Center().Component(axis) < splitPos {
			leftShapes = append(leftShapes, s)
		} else {
			rightShapes = append(rightShapes, s)
		}
	}
	return leftShapes, rightShapes
}

// Len returns the number of shapes in the aggregate
func (a *Aggregate) Len() int {
	return a.size
}

// WorldBound returns the bounds of every shape in the aggregate
func (a *Aggregate) WorldBound() core.Bounds3 {
	if a.root == nil {
		return core.EmptyBounds3()
	}
	return a.root.bounds
}

// Intersect returns the closest hit along the ray in (0, ray.TMax]
func (a *Aggregate) Intersect(ray core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	if a.root == nil {
		return 0, nil, false
	}
	var closest *interaction.SurfaceInteraction
	tHit := 0.0
	a.intersectNode(a.root, &ray, testAlphaTexture, &tHit, &closest)
	if closest == nil {
		return 0, nil, false
	}
	return tHit, closest, true
}

func (a *Aggregate) intersectNode(node *aggregateNode, ray *core.Ray, testAlpha bool, tHit *float64, closest **interaction.SurfaceInteraction) {
	if _, _, ok := node.bounds.IntersectP(*ray); !ok {
		return
	}

	if node.shapes != nil {
		for _, s := range node.shapes {
			if t, si, ok := s.Intersect(*ray, testAlpha); ok {
				ray.TMax = t
				*tHit = t
				*closest = si
			}
		}
		return
	}

	a.intersectNode(node.left, ray, testAlpha, tHit, closest)
	a.intersectNode(node.right, ray, testAlpha, tHit, closest)
}

// IntersectP reports whether anything blocks the ray in (0, ray.TMax]
func (a *Aggregate) IntersectP(ray core.Ray, testAlphaTexture bool) bool {
	if a.root == nil {
		return false
	}
	return a.occludedNode(a.root, ray, testAlphaTexture)
}

func (a *Aggregate) occludedNode(node *aggregateNode, ray core.Ray, testAlpha bool) bool {
	if _, _, ok := node.bounds.IntersectP(ray); !ok {
		return false
	}
	if node.shapes != nil {
		for _, s := range node.shapes {
			if s.IntersectP(ray, testAlpha) {
				return true
			}
		}
		return false
	}
	return a.occludedNode(node.left, ray, testAlpha) || a.occludedNode(node.right, ray, testAlpha)
}

// AggregateStats describes the shape of the hierarchy
type AggregateStats struct {
	TotalNodes  int
	LeafNodes   int
	MaxDepth    int
	TotalShapes int
}

// Stats walks the hierarchy and counts its nodes
func (a *Aggregate) Stats() AggregateStats {
	var st AggregateStats
	if a.root != nil {
		collectStats(a.root, 0, &st)
	}
	return st
}

func collectStats(node *aggregateNode, depth int, st *AggregateStats) {
	st.TotalNodes++
	if depth > st.MaxDepth {
		st.MaxDepth = depth
	}
	if node.shapes != nil {
		st.LeafNodes++
		st.TotalShapes += len(node.shapes)
		return
	}
	collectStats(node.left, depth+1, st)
	collectStats(node.right, depth+1, st)
}
