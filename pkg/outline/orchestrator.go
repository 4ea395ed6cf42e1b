package outline

import (
	"context"
	"fmt"
	"strings"

	"ai-reader-be/internal/pkg/logger"
)

// previousContextLimit caps how many already-produced nodes are carried as
// context into the next chunk's model call.
const previousContextLimit = 10

// placeholderConfidence marks synthesized fallback nodes as low-trust.
const placeholderConfidence = 0.1

// nonContentMarkers flag section titles that carry no readable content.
// Matched case-insensitively as substrings; "index" is handled separately so
// "Appendix" is not caught.
var nonContentMarkers = []string{
	"about the author",
	"author bio",
	"acknowledgment",
	"acknowledgement",
	"bibliography",
}

// ChunkedOrchestrator drives chunking, per-chunk model calls and merging for
// documents too large for one call. Chunks are processed strictly in order:
// each call may carry the previous chunks' results as context.
type ChunkedOrchestrator struct {
	chunker   *DocumentChunker
	merger    *NodeMerger
	generator StructureGenerator
	counter   *TokenCounter
	cfg       Config
	log       logger.ILogger
}

func NewChunkedOrchestrator(generator StructureGenerator, cfg Config, log logger.ILogger) *ChunkedOrchestrator {
	return &ChunkedOrchestrator{
		chunker:   NewDocumentChunker(cfg, log),
		merger:    NewNodeMerger(),
		generator: generator,
		counter:   NewTokenCounter(cfg.CharsPerToken),
		cfg:       cfg,
		log:       log,
	}
}

// NeedsChunking reports whether text must be split before generation.
func (o *ChunkedOrchestrator) NeedsChunking(text string) bool {
	if text == "" {
		return false
	}
	if o.cfg.ForceChunkAboveChars > 0 && len(text) > o.cfg.ForceChunkAboveChars {
		return true
	}
	limit := o.cfg.MaxTokensPerCall
	if o.cfg.AggressiveChunking {
		limit /= 2
	}
	return o.counter.ExceedsLimit(text, limit) || len(text) > o.cfg.MaxChunkChars
}

// ProcessLargeDocument runs the whole chunked pipeline and returns proposals
// in document-global coordinates. A chunk whose model call reports "no nodes
// generated" is replaced with a placeholder spanning that chunk so the rest
// of the document is not lost; any other chunk failure aborts the pipeline.
func (o *ChunkedOrchestrator) ProcessLargeDocument(ctx context.Context, text string, opts GenerateOptions, documentId string) ([]*NodeProposal, error) {
	chunks := o.chunker.Chunk(text, documentId)

	results := make([][]*NodeProposal, 0, len(chunks))
	var produced []*NodeProposal

	for _, chunk := range chunks {
		contextNodes := produced
		if len(contextNodes) > previousContextLimit {
			omitted := len(contextNodes) - previousContextLimit
			contextNodes = contextNodes[len(contextNodes)-previousContextLimit:]
			if o.log != nil {
				o.log.Info("outline.orchestrator", "context truncated for chunk call", map[string]interface{}{
					"document_id": documentId,
					"chunk":       chunk.Index,
					"omitted":     omitted,
				})
			}
		}

		proposals, err := o.generator.GenerateStructureWithContext(ctx, chunk.Text, opts, contextNodes, chunk.Index, len(chunks))
		if err != nil {
			if !IsNoNodesGenerated(err) {
				return nil, &ChunkProcessingError{ChunkIndex: chunk.Index, Err: err}
			}
			if o.log != nil {
				o.log.Warn("outline.orchestrator", "no nodes generated for chunk, inserting placeholder", map[string]interface{}{
					"document_id": documentId,
					"chunk":       chunk.Index,
				})
			}
			proposals = []*NodeProposal{placeholderForChunk(chunk)}
		}

		results = append(results, proposals)
		produced = append(produced, proposals...)
	}

	merged := o.merger.Merge(results, chunks)

	kept := merged[:0]
	for _, p := range merged {
		if isNonContentTitle(p.Title) {
			if o.log != nil {
				o.log.Info("outline.orchestrator", "dropping non-content section", map[string]interface{}{
					"document_id": documentId,
					"title":       p.Title,
				})
			}
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}

// placeholderForChunk synthesizes one node spanning the whole chunk so
// downstream processing keeps a spatial anchor for the region.
func placeholderForChunk(chunk Chunk) *NodeProposal {
	start, end := 0, len(chunk.Text)
	conf := placeholderConfidence
	return &NodeProposal{
		Type:        string(NodeTypeSection),
		Title:       fmt.Sprintf("Unstructured content (part %d)", chunk.Index+1),
		StartAnchor: anchorFromText(chunk.Text, true),
		EndAnchor:   anchorFromText(chunk.Text, false),
		Depth:       0,
		Confidence:  &conf,
		StartOffset: &start,
		EndOffset:   &end,
	}
}

// anchorFromText takes a short excerpt from the head or tail of text so the
// placeholder still resolves through the normal anchor path.
func anchorFromText(text string, head bool) string {
	const excerpt = 60
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= excerpt {
		return trimmed
	}
	if head {
		return strings.TrimSpace(runeSafePrefix(trimmed, excerpt))
	}
	tail := trimmed[len(trimmed)-excerpt:]
	for len(tail) > 0 && !isRuneStart(tail[0]) {
		tail = tail[1:]
	}
	return strings.TrimSpace(tail)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func isNonContentTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, marker := range nonContentMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	if t == "index" || strings.HasPrefix(t, "index ") || strings.HasPrefix(t, "index of") {
		return true
	}
	return false
}
