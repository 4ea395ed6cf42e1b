package outline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-reader-be/internal/pkg/logger"
)

// minAnchorLength is the length below which an anchor is considered weak.
// Short anchors are still searched, but ambiguity becomes much more likely.
const minAnchorLength = 20

// HeadingDetector decides whether a trimmed line looks like a major section
// marker. It backs the end-anchor fallback: when an end anchor cannot be
// found, the next detected heading bounds the node instead of document end.
type HeadingDetector func(line string) bool

var defaultHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(chapter|part|book|section)\s+([0-9]+|[ivxlcdm]+)\b`),
	regexp.MustCompile(`^#{1,6}\s+\S`),
	regexp.MustCompile(`^[0-9]+(\.[0-9]+)*\.?\s+\S`),
}

// DefaultHeadingDetector matches chapter/part/section headings with arabic
// or roman numerals, markdown headings, and numbered outline headings.
func DefaultHeadingDetector(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, re := range defaultHeadingPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// AnchorResolver resolves fuzzy anchor strings to exact byte offsets in the
// document text via a cascade of increasingly lenient strategies.
type AnchorResolver struct {
	log      logger.ILogger
	detector HeadingDetector
}

func NewAnchorResolver(log logger.ILogger, detector HeadingDetector) *AnchorResolver {
	if detector == nil {
		detector = DefaultHeadingDetector
	}
	return &AnchorResolver{log: log, detector: detector}
}

// docIndex carries the precomputed normalized views of one document so the
// per-node cascade does not rebuild them.
type docIndex struct {
	text        string
	lower       string
	folded      string
	foldedLower string
	foldedMap   []int // folded byte index -> original byte index
}

func newDocIndex(text string) *docIndex {
	folded, idx := foldWhitespace(text)
	return &docIndex{
		text:        text,
		lower:       asciiLower(text),
		folded:      folded,
		foldedLower: asciiLower(folded),
		foldedMap:   idx,
	}
}

// Resolve maps every proposal's anchors to exact offsets against the full
// document text. It fails on the first node that cannot be resolved: a batch
// with one bad node is a batch the model must redo.
func (r *AnchorResolver) Resolve(proposals []*NodeProposal, documentText string) ([]*ResolvedNode, error) {
	idx := newDocIndex(documentText)
	resolved := make([]*ResolvedNode, 0, len(proposals))

	for _, p := range proposals {
		if err := validateProposal(p); err != nil {
			return nil, err
		}

		node, err := r.resolveOne(idx, p)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, node)
	}

	return resolved, nil
}

func validateProposal(p *NodeProposal) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return &InvalidRangeError{Title: p.Title, Reason: "missing title"}
	case strings.TrimSpace(p.Type) == "":
		return &InvalidRangeError{Title: p.Title, Reason: "missing type"}
	case p.Depth < 0:
		return &InvalidRangeError{Title: p.Title, Reason: "negative depth"}
	case strings.TrimSpace(p.StartAnchor) == "":
		return &InvalidRangeError{Title: p.Title, Reason: "missing start anchor"}
	case strings.TrimSpace(p.EndAnchor) == "":
		return &InvalidRangeError{Title: p.Title, Reason: "missing end anchor"}
	}
	return nil
}

func (r *AnchorResolver) resolveOne(idx *docIndex, p *NodeProposal) (*ResolvedNode, error) {
	var startOffset, endOffset int

	startSpan, startOk := r.resolveAnchor(idx, p.StartAnchor, 0, p.Title)
	if startOk {
		startOffset = startSpan[0]

		endSpan, endOk := r.resolveAnchor(idx, p.EndAnchor, startSpan[0]+1, p.Title)
		if endOk {
			endOffset = endSpan[1]
		} else {
			endOffset = r.endFallback(idx, startSpan[1], p)
		}
	} else {
		// All textual strategies failed for the start anchor. The model's
		// own offsets are accepted instead, but only when sane and in-bounds.
		aiStart, aiEnd, ok := aiOffsetFallback(p, len(idx.text))
		if !ok {
			return nil, &AnchorNotFoundError{Title: p.Title, Anchor: p.StartAnchor, Kind: "start"}
		}
		if r.log != nil {
			r.log.Warn("outline.resolver", "anchors unresolved, using model-provided offsets", map[string]interface{}{
				"title": p.Title,
				"start": aiStart,
				"end":   aiEnd,
			})
		}
		startOffset, endOffset = aiStart, aiEnd
	}

	if endOffset <= startOffset {
		return nil, &InvalidRangeError{Title: p.Title, Start: startOffset, End: endOffset}
	}

	return &ResolvedNode{
		Type:        p.Type,
		Title:       p.Title,
		StartAnchor: p.StartAnchor,
		EndAnchor:   p.EndAnchor,
		Depth:       p.Depth,
		Confidence:  p.ClampedConfidence(),
		StartOffset: startOffset,
		EndOffset:   endOffset,
		Parent:      -1,
	}, nil
}

// aiOffsetFallback validates the model-suggested offsets. Negative offsets,
// start >= end, and out-of-bounds values are rejected even as a fallback.
func aiOffsetFallback(p *NodeProposal, docLen int) (int, int, bool) {
	if p.StartOffset == nil || p.EndOffset == nil {
		return 0, 0, false
	}
	start, end := *p.StartOffset, *p.EndOffset
	if start < 0 || end <= start || end > docLen {
		return 0, 0, false
	}
	return start, end, true
}

// endFallback bounds a node whose end anchor could not be found: the next
// major section marker after the start, or document end.
func (r *AnchorResolver) endFallback(idx *docIndex, after int, p *NodeProposal) int {
	if pos := r.nextMajorSection(idx.text, after); pos > after {
		if r.log != nil {
			r.log.Info("outline.resolver", "end anchor unresolved, bounded by next section", map[string]interface{}{
				"title": p.Title,
				"end":   pos,
			})
		}
		return pos
	}
	if r.log != nil {
		r.log.Info("outline.resolver", "end anchor unresolved, bounded by document end", map[string]interface{}{
			"title": p.Title,
		})
	}
	return len(idx.text)
}

// nextMajorSection returns the offset of the first heading-like line
// strictly after the given position, or -1.
func (r *AnchorResolver) nextMajorSection(text string, after int) int {
	pos := after
	if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
		pos += nl + 1
	} else {
		return -1
	}

	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		if lineEnd < 0 {
			line = text[pos:]
			lineEnd = len(text) - pos
		} else {
			line = text[pos : pos+lineEnd]
		}
		if r.detector(line) {
			return pos
		}
		pos += lineEnd + 1
	}
	return -1
}

// resolveAnchor runs the strategy cascade for one anchor, searching at or
// after the `from` offset. It returns the matched span in original document
// coordinates, short-circuiting on the first strategy that succeeds.
func (r *AnchorResolver) resolveAnchor(idx *docIndex, anchor string, from int, title string) ([2]int, bool) {
	if len(anchor) < minAnchorLength && r.log != nil {
		r.log.Warn("outline.resolver", "anchor shorter than recommended minimum", map[string]interface{}{
			"title":  title,
			"anchor": anchor,
			"length": len(anchor),
		})
	}

	// 1. Exact substring.
	if p := indexFrom(idx.text, anchor, from); p >= 0 {
		return [2]int{p, p + len(anchor)}, true
	}

	// 2. Whitespace runs collapsed on both sides.
	if span, ok := findFolded(idx, anchor, from, false, false); ok {
		return span, true
	}

	// 3. Backslash-escaped quotes/newlines un-escaped, then retried.
	if unescaped := unescapeAnchor(anchor); unescaped != anchor {
		if p := indexFrom(idx.text, unescaped, from); p >= 0 {
			return [2]int{p, p + len(unescaped)}, true
		}
		if span, ok := findFolded(idx, unescaped, from, false, false); ok {
			return span, true
		}
		anchor = unescaped
	}

	// 4. Case-insensitive.
	if p := indexFrom(idx.lower, asciiLower(anchor), from); p >= 0 {
		return [2]int{p, p + len(anchor)}, true
	}

	// 5. Progressively shorter unique prefixes.
	if span, ok := r.shortenedPrefix(idx, anchor, from); ok {
		return span, true
	}

	// 6. Whole-string scan of the normalized form, unique occurrence only.
	if span, ok := findFolded(idx, anchor, from, false, true); ok {
		return span, true
	}

	// 7. First three words as a phrase, unique occurrence only.
	if words := strings.Fields(anchor); len(words) >= 3 {
		phrase := strings.Join(words[:3], " ")
		if span, ok := findFolded(idx, phrase, from, false, true); ok {
			return span, true
		}
	}

	// 8. Case-insensitive fuzzy substring, unique occurrence only.
	if span, ok := findFolded(idx, anchor, from, true, true); ok {
		return span, true
	}

	return [2]int{}, false
}

// shortenedPrefix tries a half-length prefix (never below the minimum) and
// keeps halving while the prefix is absent. An ambiguous prefix is never
// accepted: more context would only make it more ambiguous.
func (r *AnchorResolver) shortenedPrefix(idx *docIndex, anchor string, from int) ([2]int, bool) {
	if len(anchor) <= minAnchorLength {
		return [2]int{}, false
	}

	prefLen := len(anchor) / 2
	if prefLen < minAnchorLength {
		prefLen = minAnchorLength
	}

	for prefLen >= minAnchorLength {
		prefix := runeSafePrefix(anchor, prefLen)
		count, first := countOccurrences(idx.text, prefix, from)
		switch {
		case count == 1:
			return [2]int{first, first + len(prefix)}, true
		case count > 1:
			return [2]int{}, false
		}
		if prefLen == minAnchorLength {
			break
		}
		prefLen /= 2
		if prefLen < minAnchorLength {
			prefLen = minAnchorLength
		}
	}
	return [2]int{}, false
}

// findFolded searches the whitespace-folded view of the document for the
// folded anchor, mapping matches back to original coordinates. With
// requireUnique set, an ambiguous match yields no result rather than a guess.
func findFolded(idx *docIndex, anchor string, from int, lower, requireUnique bool) ([2]int, bool) {
	needle, _ := foldWhitespace(anchor)
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return [2]int{}, false
	}

	hay := idx.folded
	if lower {
		hay = idx.foldedLower
		needle = asciiLower(needle)
	}

	var spans [][2]int
	searchFrom := 0
	for {
		p := strings.Index(hay[searchFrom:], needle)
		if p < 0 {
			break
		}
		p += searchFrom
		origStart := idx.foldedMap[p]
		origEnd := idx.foldedMap[p+len(needle)-1] + 1
		if origStart >= from {
			spans = append(spans, [2]int{origStart, origEnd})
			if !requireUnique {
				return spans[0], true
			}
			if len(spans) > 1 {
				return [2]int{}, false
			}
		}
		searchFrom = p + 1
	}

	if len(spans) == 1 {
		return spans[0], true
	}
	return [2]int{}, false
}

// ValidateSiblingNonOverlap groups nodes by parent (roots form one group)
// and asserts that within each group, sorted by start offset, no node starts
// before the previous one ends. Parent/child overlap across groups is
// expected and not checked here.
func ValidateSiblingNonOverlap(nodes []*ResolvedNode) error {
	groups := make(map[int][]*ResolvedNode)
	for _, n := range nodes {
		groups[n.Parent] = append(groups[n.Parent], n)
	}

	for _, group := range groups {
		sortByStartOffset(group)
		for i := 1; i < len(group); i++ {
			prev, cur := group[i-1], group[i]
			if cur.StartOffset < prev.EndOffset {
				return &ValidationError{
					First:  prev.Title,
					Second: cur.Title,
					Reason: "sibling ranges overlap",
				}
			}
		}
	}
	return nil
}

func sortByStartOffset(nodes []*ResolvedNode) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j-1].StartOffset > nodes[j].StartOffset; j-- {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
		}
	}
}

// --- string helpers ---

func indexFrom(hay, needle string, from int) int {
	if from >= len(hay) {
		return -1
	}
	p := strings.Index(hay[from:], needle)
	if p < 0 {
		return -1
	}
	return from + p
}

func countOccurrences(hay, needle string, from int) (int, int) {
	count := 0
	first := -1
	pos := from
	for pos <= len(hay) {
		p := strings.Index(hay[pos:], needle)
		if p < 0 {
			break
		}
		p += pos
		if first < 0 {
			first = p
		}
		count++
		pos = p + 1
	}
	return count, first
}

// foldWhitespace collapses internal whitespace runs to single spaces at the
// byte level and returns a map from folded byte index to original byte
// index. Non-whitespace bytes are copied verbatim, so offsets map 1:1.
func foldWhitespace(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	idx := make([]int, 0, len(s))
	inSpace := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			if !inSpace {
				b.WriteByte(' ')
				idx = append(idx, i)
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteByte(c)
		idx = append(idx, i)
	}
	return b.String(), idx
}

// asciiLower lowercases A-Z only, preserving byte offsets exactly.
func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// unescapeAnchor removes backslash escaping the model sometimes leaks from
// its JSON serialization: \" becomes a quote, \n becomes a space.
func unescapeAnchor(anchor string) string {
	anchor = strings.ReplaceAll(anchor, `\"`, `"`)
	anchor = strings.ReplaceAll(anchor, `\n`, " ")
	return anchor
}

func runeSafePrefix(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
