package outline

import (
	"errors"
	"strings"
	"testing"
)

func pInt(v int) *int { return &v }

func pFloat(v float64) *float64 { return &v }

func proposal(title, start, end string) *NodeProposal {
	return &NodeProposal{
		Type:        "section",
		Title:       title,
		StartAnchor: start,
		EndAnchor:   end,
		Depth:       0,
	}
}

func TestResolveExactAnchors(t *testing.T) {
	doc := "This is the beginning of chapter one. Here is some content for chapter one. This is the beginning of chapter two. More content follows here."
	startAnchor := "This is the beginning of chapter one"
	endAnchor := "Here is some content for chapter one"

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("Chapter One", startAnchor, endAnchor)}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if nodes[0].StartOffset != 0 {
		t.Errorf("StartOffset = %d, want 0", nodes[0].StartOffset)
	}
	wantEnd := strings.Index(doc, endAnchor) + len(endAnchor)
	if nodes[0].EndOffset != wantEnd {
		t.Errorf("EndOffset = %d, want %d", nodes[0].EndOffset, wantEnd)
	}
}

func TestResolveWhitespaceNormalization(t *testing.T) {
	doc := "Intro text. Start of chapter with lots of whitespace and then the chapter continues with more prose after that point."
	anchor := "Start  of   chapter\n\nwith    lots    of    whitespace"

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("N", anchor, "the chapter continues with more prose")}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "Start of chapter")
	if nodes[0].StartOffset != want {
		t.Errorf("StartOffset = %d, want %d", nodes[0].StartOffset, want)
	}
}

func TestResolveEscapedQuotes(t *testing.T) {
	doc := `The speaker rose. He said "hello there, good people" to the gathered crowd and sat back down again afterwards.`
	anchor := `He said \"hello there, good people\" to the gathered crowd`

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("N", anchor, "sat back down again afterwards")}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "He said")
	if nodes[0].StartOffset != want {
		t.Errorf("StartOffset = %d, want %d", nodes[0].StartOffset, want)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	doc := "some filler text before the quick brown fox jumps over the lazy dog and more filler after it ends."
	anchor := "THE QUICK BROWN FOX JUMPS OVER"

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("N", anchor, "more filler after it ends")}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "the quick brown fox")
	if nodes[0].StartOffset != want {
		t.Errorf("StartOffset = %d, want %d", nodes[0].StartOffset, want)
	}
}

func TestResolveShortenedPrefix(t *testing.T) {
	prefix := "The committee convened at dawn to "
	doc := "Filler paragraph first. " + prefix + "discuss the budget for the coming year, as it always did."
	// Full anchor diverges after the prefix, so only shortening can match.
	anchor := prefix + "consider the harvest yields of the previous decade"

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("N", anchor, "as it always did")}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, prefix)
	if nodes[0].StartOffset != want {
		t.Errorf("StartOffset = %d, want %d", nodes[0].StartOffset, want)
	}
}

func TestResolveThreeWordPhrase(t *testing.T) {
	doc := "Historical preface text. Gallia est omnis divisa in partes tres, quarum unam incolunt Belgae. Closing remarks and some final words."
	// Only the first three words of the anchor exist in the document.
	anchor := "Gallia est omnis zzqq wwvv kkjj unknown trailing words here"

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{proposal("N", anchor, "Closing remarks and some final words")}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "Gallia est omnis")
	if nodes[0].StartOffset != want {
		t.Errorf("StartOffset = %d, want %d", nodes[0].StartOffset, want)
	}
}

func TestResolveAIOffsetFallback(t *testing.T) {
	doc := strings.Repeat("abcdefghij", 10)

	p := proposal("N", "completely absent anchor text here", "another absent anchor text here")
	p.StartOffset = pInt(0)
	p.EndOffset = pInt(30)

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{p}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if nodes[0].StartOffset != 0 || nodes[0].EndOffset != 30 {
		t.Errorf("offsets = (%d,%d), want (0,30)", nodes[0].StartOffset, nodes[0].EndOffset)
	}
}

func TestResolveAIOffsetFallbackRejected(t *testing.T) {
	doc := strings.Repeat("abcdefghij", 10)

	tests := []struct {
		name       string
		start, end *int
	}{
		{"start after end", pInt(50), pInt(30)},
		{"negative start", pInt(-1), pInt(30)},
		{"end out of bounds", pInt(0), pInt(1000)},
		{"no offsets at all", nil, nil},
	}

	r := NewAnchorResolver(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := proposal("N", "completely absent anchor text here", "another absent anchor text here")
			p.StartOffset = tt.start
			p.EndOffset = tt.end

			_, err := r.Resolve([]*NodeProposal{p}, doc)
			var notFound *AnchorNotFoundError
			if !errors.As(err, &notFound) {
				t.Errorf("error = %v, want AnchorNotFoundError", err)
			}
		})
	}
}

func TestResolveEndFallbackNextSection(t *testing.T) {
	doc := "Chapter 1\nThe opening chapter begins with a long paragraph of prose that keeps going.\nChapter 2\nThe second chapter text."

	p := proposal("One", "The opening chapter begins with", "anchor that is nowhere to be found")
	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{p}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "Chapter 2")
	if nodes[0].EndOffset != want {
		t.Errorf("EndOffset = %d, want %d (next section marker)", nodes[0].EndOffset, want)
	}
}

func TestResolveEndFallbackDocumentEnd(t *testing.T) {
	doc := "A single stretch of prose with no headings at all, continuing until the very end of the document."

	p := proposal("N", "A single stretch of prose", "anchor that is nowhere to be found")
	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve([]*NodeProposal{p}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if nodes[0].EndOffset != len(doc) {
		t.Errorf("EndOffset = %d, want len(doc) = %d", nodes[0].EndOffset, len(doc))
	}
}

func TestResolveCustomHeadingDetector(t *testing.T) {
	doc := "=== BEGIN ===\nbody text that runs for a while without stopping\n=== NEXT ===\nsecond body"

	detector := func(line string) bool {
		return strings.HasPrefix(line, "=== ")
	}
	r := NewAnchorResolver(nil, detector)
	p := proposal("N", "body text that runs for a while", "anchor that is nowhere to be found")
	nodes, err := r.Resolve([]*NodeProposal{p}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := strings.Index(doc, "=== NEXT ===")
	if nodes[0].EndOffset != want {
		t.Errorf("EndOffset = %d, want %d", nodes[0].EndOffset, want)
	}
}

func TestResolveMetadataValidation(t *testing.T) {
	doc := "Enough document text for anchors to theoretically resolve against."

	tests := []struct {
		name   string
		mutate func(*NodeProposal)
	}{
		{"missing title", func(p *NodeProposal) { p.Title = " " }},
		{"missing type", func(p *NodeProposal) { p.Type = "" }},
		{"negative depth", func(p *NodeProposal) { p.Depth = -1 }},
		{"blank start anchor", func(p *NodeProposal) { p.StartAnchor = "  " }},
		{"blank end anchor", func(p *NodeProposal) { p.EndAnchor = "" }},
	}

	r := NewAnchorResolver(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := proposal("Valid", "Enough document text for anchors", "theoretically resolve against")
			tt.mutate(p)

			_, err := r.Resolve([]*NodeProposal{p}, doc)
			var invalid *InvalidRangeError
			if !errors.As(err, &invalid) {
				t.Errorf("error = %v, want InvalidRangeError", err)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	doc := "This is the beginning of chapter one. Here is some content for chapter one. Final words of the document."
	props := []*NodeProposal{
		proposal("One", "This is the beginning of chapter one", "Here is some content for chapter one"),
	}

	r := NewAnchorResolver(nil, nil)
	first, err := r.Resolve(props, doc)
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := r.Resolve(props, doc)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}

	if first[0].StartOffset != second[0].StartOffset || first[0].EndOffset != second[0].EndOffset {
		t.Errorf("resolution not idempotent: (%d,%d) vs (%d,%d)",
			first[0].StartOffset, first[0].EndOffset, second[0].StartOffset, second[0].EndOffset)
	}
}

func TestResolveConfidenceClamping(t *testing.T) {
	doc := "This is the beginning of chapter one. Here is some content for chapter one."

	tests := []struct {
		name string
		in   *float64
		want float64
	}{
		{"missing defaults to neutral", nil, DefaultConfidence},
		{"above one clamps", pFloat(1.7), 1},
		{"below zero clamps", pFloat(-0.2), 0},
		{"in range kept", pFloat(0.85), 0.85},
	}

	r := NewAnchorResolver(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := proposal("N", "This is the beginning of chapter one", "Here is some content for chapter one")
			p.Confidence = tt.in

			nodes, err := r.Resolve([]*NodeProposal{p}, doc)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if nodes[0].Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", nodes[0].Confidence, tt.want)
			}
		})
	}
}

func TestResolveRangeInvariant(t *testing.T) {
	doc := "This is the beginning of chapter one. Here is some content for chapter one. This is the beginning of chapter two. Trailing text."
	props := []*NodeProposal{
		proposal("One", "This is the beginning of chapter one", "Here is some content for chapter one"),
		proposal("Two", "This is the beginning of chapter two", "Trailing text."),
	}

	r := NewAnchorResolver(nil, nil)
	nodes, err := r.Resolve(props, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for _, n := range nodes {
		if n.StartOffset < 0 || n.StartOffset >= n.EndOffset || n.EndOffset > len(doc) {
			t.Errorf("node %q violates 0 <= start < end <= len: (%d,%d)", n.Title, n.StartOffset, n.EndOffset)
		}
	}
}

func TestValidateSiblingNonOverlap(t *testing.T) {
	ok := []*ResolvedNode{
		{Title: "A", StartOffset: 0, EndOffset: 50, Parent: -1},
		{Title: "B", StartOffset: 50, EndOffset: 100, Parent: -1},
	}
	if err := ValidateSiblingNonOverlap(ok); err != nil {
		t.Errorf("disjoint siblings should pass, got %v", err)
	}

	overlapping := []*ResolvedNode{
		{Title: "A", StartOffset: 0, EndOffset: 60, Parent: -1},
		{Title: "B", StartOffset: 50, EndOffset: 100, Parent: -1},
	}
	var verr *ValidationError
	if err := ValidateSiblingNonOverlap(overlapping); !errors.As(err, &verr) {
		t.Errorf("overlapping siblings should fail, got %v", err)
	}

	// Parent/child overlap crosses groups and is allowed.
	nested := []*ResolvedNode{
		{Title: "Parent", StartOffset: 0, EndOffset: 100, Parent: -1},
		{Title: "Child", StartOffset: 10, EndOffset: 90, Parent: 0},
	}
	if err := ValidateSiblingNonOverlap(nested); err != nil {
		t.Errorf("parent/child overlap should pass, got %v", err)
	}
}

func TestDefaultHeadingDetector(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Chapter 12", true},
		{"chapter IV", true},
		{"Part 2", true},
		{"## Background", true},
		{"3.1 Methods overview", true},
		{"just an ordinary sentence.", false},
		{"", false},
		{"the chapter was long", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := DefaultHeadingDetector(tt.line); got != tt.want {
				t.Errorf("DefaultHeadingDetector(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
