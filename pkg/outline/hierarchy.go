package outline

import "sort"

// HierarchyBuilder assigns parent links to a flat list of offset-resolved
// nodes based on range nesting, then widens ancestor end offsets until every
// ancestor fully contains its descendants.
type HierarchyBuilder struct{}

func NewHierarchyBuilder() *HierarchyBuilder {
	return &HierarchyBuilder{}
}

// Build sorts nodes by depth then start offset and populates Parent indices
// in place. A node with no containing shallower node stays a root.
func (b *HierarchyBuilder) Build(nodes []*ResolvedNode) []*ResolvedNode {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].StartOffset < nodes[j].StartOffset
	})

	for i, node := range nodes {
		node.Parent = -1
		bestDepth := -1
		for j := 0; j < i; j++ {
			candidate := nodes[j]
			if candidate.Depth >= node.Depth {
				continue
			}
			// A node belongs to the shallower node it starts inside. Ends
			// may stick out at this point; the widening pass repairs them.
			if candidate.StartOffset > node.StartOffset || node.StartOffset >= candidate.EndOffset {
				continue
			}
			// Prefer the closest containing ancestor.
			if candidate.Depth > bestDepth {
				bestDepth = candidate.Depth
				node.Parent = j
			}
		}
	}

	b.widenAncestors(nodes)
	return nodes
}

// ValidateHierarchyContainment asserts every parented node lies fully inside
// its parent's range. The widening pass keeps this invariant during a build;
// the check exists for the post-persistence audit.
func ValidateHierarchyContainment(nodes []*ResolvedNode) error {
	for _, n := range nodes {
		if n.Parent < 0 || n.Parent >= len(nodes) {
			continue
		}
		p := nodes[n.Parent]
		if p.StartOffset > n.StartOffset || n.EndOffset > p.EndOffset {
			return &ValidationError{
				First:  p.Title,
				Second: n.Title,
				Reason: "child range escapes parent",
			}
		}
	}
	return nil
}

// widenAncestors walks from deepest to shallowest: a child sticking out past
// its parent's end widens the parent (and transitively its ancestors). End
// offsets are only ever widened; start offsets are never touched.
func (b *HierarchyBuilder) widenAncestors(nodes []*ResolvedNode) {
	for i := len(nodes) - 1; i >= 0; i-- {
		child := nodes[i]
		parent := child.Parent
		for parent >= 0 {
			p := nodes[parent]
			if child.EndOffset > p.EndOffset {
				p.EndOffset = child.EndOffset
			}
			child = p
			parent = p.Parent
		}
	}
}
