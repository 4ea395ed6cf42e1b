// Package outline turns fuzzy, anchor-based structure proposals from an LLM
// into a validated, offset-exact tree over the original document text.
package outline

// NodeType classifies a proposed structure node.
type NodeType string

const (
	NodeTypeChapter    NodeType = "chapter"
	NodeTypeSection    NodeType = "section"
	NodeTypeSubsection NodeType = "subsection"
	NodeTypeParagraph  NodeType = "paragraph"
)

// DefaultConfidence is assumed when the model omits a confidence value.
const DefaultConfidence = 0.5

// NodeProposal is a single structure node as proposed by the model,
// before anchors are resolved to offsets. It only lives for the duration
// of one structuring pass.
type NodeProposal struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	StartAnchor string   `json:"start_anchor"`
	EndAnchor   string   `json:"end_anchor"`
	Depth       int      `json:"depth"`
	Confidence  *float64 `json:"confidence,omitempty"`

	// Optional offsets suggested by the model itself. They are only used
	// as a fallback when anchor resolution fails, and only when in-bounds.
	StartOffset *int `json:"start_offset,omitempty"`
	EndOffset   *int `json:"end_offset,omitempty"`
}

// ClampedConfidence returns the proposal confidence clamped to [0,1],
// or DefaultConfidence when the model omitted it.
func (p *NodeProposal) ClampedConfidence() float64 {
	if p.Confidence == nil {
		return DefaultConfidence
	}
	c := *p.Confidence
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ResolvedNode is a NodeProposal whose anchors have been resolved to exact
// byte offsets into the document text. Parent is an index into the slice the
// node belongs to (arena style), -1 for roots; it is a lookup key, never an
// owning pointer.
type ResolvedNode struct {
	Type        string
	Title       string
	StartAnchor string
	EndAnchor   string
	Depth       int
	Confidence  float64
	StartOffset int
	EndOffset   int
	Parent      int
}

// Contains reports whether n's range fully contains other's range.
func (n *ResolvedNode) Contains(other *ResolvedNode) bool {
	return n.StartOffset <= other.StartOffset && other.EndOffset <= n.EndOffset
}

// Chunk is a contiguous, possibly overlapping slice of document text sent to
// the model in one call. Chunks exist only during generation and are
// discarded after merging.
type Chunk struct {
	Text        string
	StartOffset int
	EndOffset   int
	Index       int
}

// GenerateOptions are the caller-owned options shared by every model call of
// one structuring pass.
type GenerateOptions struct {
	DocumentTitle string
	MaxDepth      int
	Language      string
}

// Config is the read-only configuration surface of the structuring core.
// It is owned by the application config layer.
type Config struct {
	// CharsPerToken is the fixed chars-per-token ratio used for estimation.
	CharsPerToken float64
	// MaxTokensPerCall is the model token budget for a single call.
	MaxTokensPerCall int
	// MaxChunkChars is the character ceiling for a single chunk.
	MaxChunkChars int
	// OverlapChars is the character overlap between consecutive chunks.
	OverlapChars int
	// PromptOverheadTokens reserves token room for the prompt scaffolding.
	PromptOverheadTokens int
	// AggressiveChunking halves the chunking threshold when set.
	AggressiveChunking bool
	// EmergencyChunking enables recursive halving of absurdly large chunks.
	EmergencyChunking bool
	// ForceChunkAboveChars always chunks documents above this size.
	ForceChunkAboveChars int
	// MaxRetries bounds the model-call retry loop.
	MaxRetries int
}

// DefaultConfig returns the defaults used when the environment provides
// nothing better.
func DefaultConfig() Config {
	return Config{
		CharsPerToken:        4.0,
		MaxTokensPerCall:     8000,
		MaxChunkChars:        30000,
		OverlapChars:         1000,
		PromptOverheadTokens: 1200,
		AggressiveChunking:   false,
		EmergencyChunking:    true,
		ForceChunkAboveChars: 200000,
		MaxRetries:           3,
	}
}
