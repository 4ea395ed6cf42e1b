package outline

import (
	"strings"
	"testing"
)

func chunkTestConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxTokensPerCall = 500 // ~2000 chars
	cfg.MaxChunkChars = 2000
	cfg.OverlapChars = 200
	cfg.PromptOverheadTokens = 50
	return cfg
}

func TestChunkSmallDocumentSingleChunk(t *testing.T) {
	c := NewDocumentChunker(chunkTestConfig(), nil)
	doc := "A short document that fits comfortably in one model call."

	chunks := c.Chunk(doc, "doc-1")
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].StartOffset != 0 || chunks[0].EndOffset != len(doc) || chunks[0].Index != 0 {
		t.Errorf("chunk = {%d,%d,%d}, want {0,%d,0}", chunks[0].StartOffset, chunks[0].EndOffset, chunks[0].Index, len(doc))
	}
}

func TestChunkCoverage(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("This is sentence number one of the paragraph. Here comes another sentence with content.\n\n")
	}
	doc := sb.String()

	c := NewDocumentChunker(chunkTestConfig(), nil)
	chunks := c.Chunk(doc, "doc-1")

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}

	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].StartOffset)
	}
	if chunks[len(chunks)-1].EndOffset != len(doc) {
		t.Errorf("last chunk ends at %d, want %d", chunks[len(chunks)-1].EndOffset, len(doc))
	}

	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Text != doc[ch.StartOffset:ch.EndOffset] {
			t.Errorf("chunk %d text does not match its offsets", i)
		}
		if i > 0 {
			prev := chunks[i-1]
			// Overlap: each chunk starts at or before the previous end.
			if ch.StartOffset > prev.EndOffset {
				t.Errorf("gap between chunk %d (end %d) and chunk %d (start %d)", i-1, prev.EndOffset, i, ch.StartOffset)
			}
			if ch.StartOffset < prev.EndOffset && ch.StartOffset <= prev.StartOffset {
				t.Errorf("chunk %d does not advance past chunk %d", i, i-1)
			}
		}
	}
}

func TestChunkPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("word ", 300) // ~1500 chars
	doc := para + "\n\n" + para + "\n\n" + para

	c := NewDocumentChunker(chunkTestConfig(), nil)
	chunks := c.Chunk(doc, "doc-1")

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	// The first cut should land just after a paragraph break, not mid-word.
	first := chunks[0]
	if first.EndOffset < len(doc) {
		before := doc[:first.EndOffset]
		if !strings.HasSuffix(before, "\n\n") && !strings.HasSuffix(before, ". ") && !strings.HasSuffix(before, "\n") && !strings.HasSuffix(before, " ") {
			t.Errorf("first chunk ends mid-word: %q", before[len(before)-12:])
		}
	}
}

func TestChunkDoesNotSplitRunes(t *testing.T) {
	doc := strings.Repeat("héllo wörld, ünïcode cöntent here. ", 200)

	c := NewDocumentChunker(chunkTestConfig(), nil)
	chunks := c.Chunk(doc, "doc-1")

	for i, ch := range chunks {
		if !strings.HasPrefix(doc[ch.StartOffset:], ch.Text) {
			t.Fatalf("chunk %d misaligned with document", i)
		}
		for _, r := range ch.Text {
			if r == '�' {
				t.Fatalf("chunk %d contains a split rune", i)
			}
		}
	}
}
