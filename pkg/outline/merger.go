package outline

// NodeMerger rewrites per-chunk proposals into document-global coordinates
// and fuses duplicate detections of the same section across overlapping
// chunks.
type NodeMerger struct{}

func NewNodeMerger() *NodeMerger {
	return &NodeMerger{}
}

type mergedProposal struct {
	proposal   *NodeProposal
	chunkIndex int
}

// Merge rebases each proposal's offsets by its chunk's start offset, then
// fuses proposals from different chunks that carry the same title and whose
// rebased ranges overlap or touch. Proposals from the same chunk are never
// fused with each other.
func (m *NodeMerger) Merge(chunkResults [][]*NodeProposal, chunks []Chunk) []*NodeProposal {
	var all []mergedProposal

	for i, result := range chunkResults {
		if i >= len(chunks) {
			break
		}
		base := chunks[i].StartOffset
		for _, p := range result {
			// Offsets are copied even at base 0 so fuse never writes
			// through to the caller's proposals.
			rebased := *p
			if p.StartOffset != nil {
				v := *p.StartOffset + base
				rebased.StartOffset = &v
			}
			if p.EndOffset != nil {
				v := *p.EndOffset + base
				rebased.EndOffset = &v
			}
			all = append(all, mergedProposal{proposal: &rebased, chunkIndex: i})
		}
	}

	var out []mergedProposal
	for _, cand := range all {
		fused := false
		for _, kept := range out {
			if kept.chunkIndex == cand.chunkIndex {
				continue
			}
			if kept.proposal.Title != cand.proposal.Title {
				continue
			}
			if !rangesTouch(kept.proposal, cand.proposal) {
				continue
			}
			fuse(kept.proposal, cand.proposal)
			fused = true
			break
		}
		if !fused {
			out = append(out, cand)
		}
	}

	proposals := make([]*NodeProposal, len(out))
	for i, mp := range out {
		proposals[i] = mp.proposal
	}
	return proposals
}

// rangesTouch reports whether both proposals carry offsets and those ranges
// overlap or are adjacent. Without offsets on both sides there is no spatial
// evidence the two detections are the same section.
func rangesTouch(a, b *NodeProposal) bool {
	if a.StartOffset == nil || a.EndOffset == nil || b.StartOffset == nil || b.EndOffset == nil {
		return false
	}
	return *a.StartOffset <= *b.EndOffset && *b.StartOffset <= *a.EndOffset
}

// fuse widens dst to cover both detections: min start, max end. Confidence
// keeps the higher of the two.
func fuse(dst, src *NodeProposal) {
	if *src.StartOffset < *dst.StartOffset {
		*dst.StartOffset = *src.StartOffset
	}
	if *src.EndOffset > *dst.EndOffset {
		*dst.EndOffset = *src.EndOffset
	}
	if src.Confidence != nil && (dst.Confidence == nil || *src.Confidence > *dst.Confidence) {
		dst.Confidence = src.Confidence
	}
}
