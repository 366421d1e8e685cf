package chunking

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
)

const (
	// maxHeadingChars truncates very long headings in the context stack.
	maxHeadingChars = 100
	// headingContextSize is how many ancestor headings a chunk records.
	headingContextSize = 3
)

// assemblyContext is the transient state threaded through pass 1: the open
// heading stack, the last seen page, and element-type counters. It lives for
// one document and is snapshotted into chunk metadata at seal time.
type assemblyContext struct {
	headings []string
	page     int
	tables   int
	lists    int
}

func newAssemblyContext() *assemblyContext {
	return &assemblyContext{page: 1}
}

func (c *assemblyContext) update(el Element) {
	if el.Kind == KindHeading {
		level := el.Level
		if level < 1 {
			level = 1
		}
		// Truncate the stack to the parent depth, then push.
		if level-1 < len(c.headings) {
			c.headings = c.headings[:level-1]
		}
		h := el.Content
		if len(h) > maxHeadingChars {
			h = h[:alignRune(h, maxHeadingChars)]
		}
		c.headings = append(c.headings, h)
	}
	if el.Page > 0 {
		c.page = el.Page
	}
	switch el.Kind {
	case KindTable:
		c.tables++
	case KindList:
		c.lists++
	}
}

// headingTrail returns a copy of the most recent ancestor headings.
func (c *assemblyContext) headingTrail() []string {
	hs := c.headings
	if len(hs) > headingContextSize {
		hs = hs[len(hs)-headingContextSize:]
	}
	return slices.Clone(hs)
}

// assemblerConfig controls the two-pass packing shared by the hierarchical
// strategies.
type assemblerConfig struct {
	Strategy        string
	LargeTarget     int
	SmallTarget     int
	Overlap         int
	MinSmall        int // floor for small chunks; fragments below are dropped
	MinFragment     int // minimum useful partial-overlap slice
	Separator       string
	RenderStructure bool // emphasize headings, tag tables
	PartialOverlap  bool // allow a partial trailing slice in the overlap tail
}

// assembler folds elements into large parent chunks (pass 1) and re-splits
// each parent into small child chunks (pass 2). It exclusively constructs
// the chunks for one document's run; callers own the result afterward.
type assembler struct {
	cfg     assemblerConfig
	measure SizeMeasure
	log     *slog.Logger
}

type sizedElement struct {
	el   Element
	size int
}

// largeChunks greedily packs elements into size-bounded parent chunks.
// A single element larger than the target still gets its own chunk: the
// assembler never splits inside an element.
func (a *assembler) largeChunks(doc Document, elements []Element) []Chunk {
	var chunks []Chunk
	var buf []sizedElement
	total := 0
	index := 0
	ctx := newAssemblyContext()

	for _, el := range elements {
		ctx.update(el)
		size := a.measure.Size(el.Content) // each element measured once per pass

		if total+size > a.cfg.LargeTarget && len(buf) > 0 {
			chunks = append(chunks, a.seal(doc, buf, index, ctx))
			index++
			buf, total = a.overlapTail(buf)
		}

		buf = append(buf, sizedElement{el: el, size: size})
		total += size
	}
	if len(buf) > 0 {
		chunks = append(chunks, a.seal(doc, buf, index, ctx))
	}
	return chunks
}

// overlapTail walks the sealed buffer backwards, collecting whole elements
// while they fit the overlap budget. An element exactly filling the
// remaining budget is included. When partial overlap is allowed, a trailing
// slice of the next element is taken if the remaining allowance exceeds the
// minimum fragment size.
func (a *assembler) overlapTail(buf []sizedElement) ([]sizedElement, int) {
	if a.cfg.Overlap <= 0 {
		return nil, 0
	}
	var tail []sizedElement
	total := 0
	for i := len(buf) - 1; i >= 0; i-- {
		se := buf[i]
		if total+se.size <= a.cfg.Overlap {
			tail = append([]sizedElement{se}, tail...)
			total += se.size
			continue
		}
		if a.cfg.PartialOverlap {
			if remaining := a.cfg.Overlap - total; remaining > a.cfg.MinFragment {
				partial := se.el
				partial.Content = tailSlice(se.el.Content, remaining)
				if partial.Content != "" {
					size := a.measure.Size(partial.Content)
					tail = append([]sizedElement{{el: partial, size: size}}, tail...)
					total += size
				}
			}
		}
		break
	}
	return tail, total
}

func (a *assembler) seal(doc Document, buf []sizedElement, index int, ctx *assemblyContext) Chunk {
	content := a.render(buf)
	md := Metadata{
		Strategy:        a.cfg.Strategy,
		SizeUnit:        a.measure.Unit(),
		SizeCount:       a.measure.Size(content),
		ElementTypes:    kindSet(buf),
		PageNumbers:     pageSet(buf),
		HeadingsContext: ctx.headingTrail(),
		HasHeadings:     hasKind(buf, KindHeading),
		HasLists:        hasKind(buf, KindList),
		HasTables:       hasKind(buf, KindTable),
		ElementCount:    len(buf),
		WordCount:       len(strings.Fields(content)),
		Overlap:         a.cfg.Overlap,
	}
	return newChunk(doc, content, index, ChunkLarge, md)
}

func (a *assembler) render(buf []sizedElement) string {
	parts := make([]string, 0, len(buf))
	for _, se := range buf {
		switch {
		case a.cfg.RenderStructure && se.el.Kind == KindHeading:
			parts = append(parts, "\n## "+se.el.Content+"\n")
		case a.cfg.RenderStructure && se.el.Kind == KindTable:
			parts = append(parts, "\n[TABLE]\n"+se.el.Content+"\n")
		default:
			parts = append(parts, se.el.Content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, a.cfg.Separator))
}

// smallChunks re-splits each parent into child chunks. Child indices form
// one monotonically increasing sequence across all parents of the document.
func (a *assembler) smallChunks(doc Document, large []Chunk) ([]Chunk, error) {
	var small []Chunk
	index := 0
	for _, parent := range large {
		contents, err := a.measure.SplitBySize(parent.Content, a.cfg.SmallTarget, a.cfg.Overlap)
		if err != nil {
			return nil, err
		}
		for i, content := range contents {
			size := a.measure.Size(content)
			if a.cfg.MinSmall > 0 && size < a.cfg.MinSmall {
				continue // dropped, not merged
			}
			md := parent.Metadata.clone()
			md.SizeCount = size
			md.WordCount = len(strings.Fields(content))
			md.SubChunkIndex = i
			md.TotalSubChunks = len(contents)

			child := newChunk(doc, content, index, ChunkSmall, md)
			child.ParentChunkID = parent.ID
			small = append(small, child)
			index++
		}
	}
	return small, nil
}

func kindSet(buf []sizedElement) []ElementKind {
	seen := make(map[ElementKind]bool, 4)
	var kinds []ElementKind
	for _, se := range buf {
		if !seen[se.el.Kind] {
			seen[se.el.Kind] = true
			kinds = append(kinds, se.el.Kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}

func pageSet(buf []sizedElement) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, se := range buf {
		if se.el.Page > 0 && !seen[se.el.Page] {
			seen[se.el.Page] = true
			pages = append(pages, se.el.Page)
		}
	}
	sort.Ints(pages)
	return pages
}

func hasKind(buf []sizedElement, kind ElementKind) bool {
	for _, se := range buf {
		if se.el.Kind == kind {
			return true
		}
	}
	return false
}

// tailSlice returns the last n bytes of s, aligned to a rune boundary.
func tailSlice(s string, n int) string {
	if n >= len(s) {
		return s
	}
	return s[alignRune(s, len(s)-n):]
}
