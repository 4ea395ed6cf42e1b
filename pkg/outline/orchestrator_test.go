package outline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCall struct {
	chunkIndex  int
	totalChunks int
	contextLen  int
}

type fakeGenerator struct {
	byChunk map[int][]*NodeProposal
	errs    map[int]error
	calls   []fakeCall
}

func (f *fakeGenerator) GenerateStructure(ctx context.Context, text string, opts GenerateOptions) ([]*NodeProposal, error) {
	return f.GenerateStructureWithContext(ctx, text, opts, nil, 0, 1)
}

func (f *fakeGenerator) GenerateStructureWithContext(ctx context.Context, text string, opts GenerateOptions, previousNodes []*NodeProposal, chunkIndex, totalChunks int) ([]*NodeProposal, error) {
	f.calls = append(f.calls, fakeCall{chunkIndex: chunkIndex, totalChunks: totalChunks, contextLen: len(previousNodes)})
	if err, ok := f.errs[chunkIndex]; ok {
		return nil, err
	}
	return f.byChunk[chunkIndex], nil
}

func orchestratorTestConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxTokensPerCall = 500
	cfg.MaxChunkChars = 2000
	cfg.OverlapChars = 200
	cfg.PromptOverheadTokens = 50
	return cfg
}

func largeDoc() string {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		sb.WriteString("A steady paragraph of document prose, long enough to force chunking. ")
	}
	return sb.String()
}

func TestNeedsChunking(t *testing.T) {
	cfg := orchestratorTestConfig()
	o := NewChunkedOrchestrator(&fakeGenerator{}, cfg, nil)

	if o.NeedsChunking("") {
		t.Error("empty text must not need chunking")
	}
	if o.NeedsChunking("short text") {
		t.Error("short text must not need chunking")
	}
	if !o.NeedsChunking(largeDoc()) {
		t.Error("large text must need chunking")
	}
}

func TestNeedsChunkingAggressiveHalvesThreshold(t *testing.T) {
	cfg := orchestratorTestConfig()
	text := strings.Repeat("a", 1400) // 350 tokens: under 500, over 250

	normal := NewChunkedOrchestrator(&fakeGenerator{}, cfg, nil)
	if normal.NeedsChunking(text) {
		t.Error("350 tokens should fit under the normal 500-token limit")
	}

	cfg.AggressiveChunking = true
	aggressive := NewChunkedOrchestrator(&fakeGenerator{}, cfg, nil)
	if !aggressive.NeedsChunking(text) {
		t.Error("aggressive mode should chunk at half the limit")
	}
}

func TestNeedsChunkingForcedAboveCeiling(t *testing.T) {
	cfg := orchestratorTestConfig()
	cfg.MaxTokensPerCall = 1 << 30
	cfg.MaxChunkChars = 1 << 30
	cfg.ForceChunkAboveChars = 100

	o := NewChunkedOrchestrator(&fakeGenerator{}, cfg, nil)
	if !o.NeedsChunking(strings.Repeat("a", 101)) {
		t.Error("text above the absolute ceiling must always chunk")
	}
}

func TestProcessLargeDocumentSequentialWithContext(t *testing.T) {
	doc := largeDoc()
	gen := &fakeGenerator{byChunk: map[int][]*NodeProposal{}}

	cfg := orchestratorTestConfig()
	chunker := NewDocumentChunker(cfg, nil)
	chunks := chunker.Chunk(doc, "doc-1")
	if len(chunks) < 2 {
		t.Fatalf("test needs at least 2 chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		gen.byChunk[ch.Index] = []*NodeProposal{offsetProposal("Section "+string(rune('A'+ch.Index)), 10, 100)}
	}

	o := NewChunkedOrchestrator(gen, cfg, nil)
	proposals, err := o.ProcessLargeDocument(context.Background(), doc, GenerateOptions{}, "doc-1")
	if err != nil {
		t.Fatalf("ProcessLargeDocument() error = %v", err)
	}
	if len(proposals) != len(chunks) {
		t.Fatalf("len(proposals) = %d, want %d", len(proposals), len(chunks))
	}

	// Offsets must be rebased to document-global coordinates.
	for i, p := range proposals {
		want := chunks[i].StartOffset + 10
		if *p.StartOffset != want {
			t.Errorf("proposal %d start = %d, want %d", i, *p.StartOffset, want)
		}
	}

	// Chunks are processed in order and later calls carry earlier results.
	for i, call := range gen.calls {
		if call.chunkIndex != i {
			t.Errorf("call %d processed chunk %d, want %d", i, call.chunkIndex, i)
		}
		wantCtx := i
		if wantCtx > previousContextLimit {
			wantCtx = previousContextLimit
		}
		if call.contextLen != wantCtx {
			t.Errorf("call %d carried %d context nodes, want %d", i, call.contextLen, wantCtx)
		}
	}
}

func TestProcessLargeDocumentPlaceholderOnNoNodes(t *testing.T) {
	doc := largeDoc()
	cfg := orchestratorTestConfig()
	chunks := NewDocumentChunker(cfg, nil).Chunk(doc, "doc-1")
	if len(chunks) < 2 {
		t.Fatalf("test needs at least 2 chunks, got %d", len(chunks))
	}

	gen := &fakeGenerator{
		byChunk: map[int][]*NodeProposal{},
		errs:    map[int]error{0: &GenerationError{Message: NoNodesMessage}},
	}
	for _, ch := range chunks {
		if ch.Index == 0 {
			continue
		}
		gen.byChunk[ch.Index] = []*NodeProposal{offsetProposal("Section "+string(rune('A'+ch.Index)), 10, 100)}
	}

	o := NewChunkedOrchestrator(gen, cfg, nil)
	proposals, err := o.ProcessLargeDocument(context.Background(), doc, GenerateOptions{}, "doc-1")
	if err != nil {
		t.Fatalf("ProcessLargeDocument() error = %v", err)
	}
	if len(proposals) != len(chunks) {
		t.Fatalf("len(proposals) = %d, want %d (placeholder keeps the failed chunk)", len(proposals), len(chunks))
	}

	placeholder := proposals[0]
	if !strings.Contains(placeholder.Title, "part 1") {
		t.Errorf("placeholder title = %q, want a reference to part 1", placeholder.Title)
	}
	if *placeholder.StartOffset != chunks[0].StartOffset || *placeholder.EndOffset != chunks[0].EndOffset {
		t.Errorf("placeholder spans (%d,%d), want the whole chunk (%d,%d)",
			*placeholder.StartOffset, *placeholder.EndOffset, chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestProcessLargeDocumentAbortsOnHardFailure(t *testing.T) {
	doc := largeDoc()
	cfg := orchestratorTestConfig()

	gen := &fakeGenerator{
		byChunk: map[int][]*NodeProposal{0: {offsetProposal("A", 0, 100)}},
		errs:    map[int]error{1: errors.New("model exploded")},
	}

	o := NewChunkedOrchestrator(gen, cfg, nil)
	_, err := o.ProcessLargeDocument(context.Background(), doc, GenerateOptions{}, "doc-1")

	var chunkErr *ChunkProcessingError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("error = %v, want ChunkProcessingError", err)
	}
	if chunkErr.ChunkIndex != 1 {
		t.Errorf("ChunkIndex = %d, want 1", chunkErr.ChunkIndex)
	}
}

func TestNonContentTitleFilter(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"About the Author", true},
		{"Acknowledgments", true},
		{"Acknowledgements", true},
		{"Bibliography", true},
		{"Index", true},
		{"Index of Names", true},
		{"Appendix A", false}, // "index" inside "Appendix" must not match
		{"Chapter 3: The Journey", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := isNonContentTitle(tt.title); got != tt.want {
				t.Errorf("isNonContentTitle(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
