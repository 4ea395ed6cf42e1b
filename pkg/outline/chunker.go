package outline

import (
	"strings"
	"unicode/utf8"

	"ai-reader-be/internal/pkg/logger"
)

// emergencyChunkLimit is the hard ceiling for a single produced chunk.
// Anything above it is re-split by halving, regardless of configuration.
const emergencyChunkLimit = 2 * 1024 * 1024

// boundaryLookback is how far back from a hard cut the chunker searches for
// a paragraph or sentence boundary.
const boundaryLookback = 512

// DocumentChunker splits raw text into overlapping windows sized to stay
// under the configured token and character budgets.
type DocumentChunker struct {
	counter *TokenCounter
	cfg     Config
	log     logger.ILogger
}

func NewDocumentChunker(cfg Config, log logger.ILogger) *DocumentChunker {
	return &DocumentChunker{
		counter: NewTokenCounter(cfg.CharsPerToken),
		cfg:     cfg,
		log:     log,
	}
}

// Chunk splits text into chunks indexed sequentially from 0. Consecutive
// chunks overlap by the configured amount so no context is lost at the
// seams, and together they cover [0, len(text)) with no gaps.
func (c *DocumentChunker) Chunk(text string, documentId string) []Chunk {
	if !c.counter.ExceedsLimit(text, c.cfg.MaxTokensPerCall) && len(text) <= c.cfg.MaxChunkChars {
		return []Chunk{{Text: text, StartOffset: 0, EndOffset: len(text), Index: 0}}
	}

	size := c.counter.SafeChunkSizeChars(c.cfg.MaxTokensPerCall, c.cfg.PromptOverheadTokens)
	if size > c.cfg.MaxChunkChars {
		size = c.cfg.MaxChunkChars
	}
	if size <= c.cfg.OverlapChars {
		size = c.cfg.OverlapChars * 2
	}
	if size <= 0 {
		size = len(text)
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		if c.cfg.EmergencyChunking && end-start > emergencyChunkLimit {
			for _, span := range emergencySplit(text, start, end) {
				chunks = append(chunks, Chunk{
					Text:        text[span[0]:span[1]],
					StartOffset: span[0],
					EndOffset:   span[1],
					Index:       index,
				})
				index++
			}
		} else {
			chunks = append(chunks, Chunk{
				Text:        text[start:end],
				StartOffset: start,
				EndOffset:   end,
				Index:       index,
			})
			index++
		}

		if end == len(text) {
			break
		}

		next := end - c.cfg.OverlapChars
		if next <= start {
			// Overlap would stall the walk; move on without it.
			next = end
		}
		start = next
	}

	if c.log != nil {
		c.log.Info("outline.chunker", "document split into chunks", map[string]interface{}{
			"document_id": documentId,
			"chunks":      len(chunks),
			"chunk_size":  size,
			"overlap":     c.cfg.OverlapChars,
		})
	}

	return chunks
}

// breakPoint moves a hard cut at end backwards to the nearest paragraph or
// sentence boundary within the lookback window, falling back to a rune
// boundary so multi-byte characters are never split.
func (c *DocumentChunker) breakPoint(text string, start, end int) int {
	window := boundaryLookback
	if window > (end-start)/4 {
		window = (end - start) / 4
	}
	from := end - window
	if from < start {
		from = start
	}

	if p := strings.LastIndex(text[from:end], "\n\n"); p >= 0 {
		return from + p + 2
	}

	best := -1
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if p := strings.LastIndex(text[from:end], sep); p >= 0 {
			if cut := from + p + len(sep); cut > best {
				best = cut
			}
		}
	}
	if best > start {
		return best
	}

	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// emergencySplit halves an oversized span recursively until every piece is
// under the emergency ceiling. Returned spans are contiguous.
func emergencySplit(text string, start, end int) [][2]int {
	if end-start <= emergencyChunkLimit {
		return [][2]int{{start, end}}
	}
	mid := start + (end-start)/2
	for mid > start && !utf8.RuneStart(text[mid]) {
		mid--
	}
	out := emergencySplit(text, start, mid)
	return append(out, emergencySplit(text, mid, end)...)
}
