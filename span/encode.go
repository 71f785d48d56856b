package span

import (
	"github.com/cranefold/sourcefrag/internal/textspan"
	"github.com/cranefold/sourcefrag/internal/vlq"
	"github.com/cranefold/sourcefrag/srcmap"
)

// Options controls Encode.
type Options struct {
	File string
}

// encoder carries the delta state of the mappings string under
// construction: every emitted field is relative to the previous segment.
type encoder struct {
	buf []byte

	emittedLine int // generated line the last ';' opened, 1-based
	prevCol     int
	prevSource  int
	prevLine0   int
	prevCol0    int
	prevName    int

	sourceIndex map[string]int
	sources     []string
	contents    []*string
	hasContent  bool
	nameIndex   map[string]int
	names       []string
}

func (e *encoder) ensureSource(name string, content *string) int {
	if i, ok := e.sourceIndex[name]; ok {
		return i
	}
	i := len(e.sources)
	e.sourceIndex[name] = i
	e.sources = append(e.sources, name)
	e.contents = append(e.contents, content)
	if content != nil {
		e.hasContent = true
	}
	return i
}

func (e *encoder) ensureName(name string) int {
	if i, ok := e.nameIndex[name]; ok {
		return i
	}
	i := len(e.names)
	e.nameIndex[name] = i
	e.names = append(e.names, name)
	return i
}

func (e *encoder) segment(line, col int, r Run, content *string) {
	for e.emittedLine < line {
		e.buf = append(e.buf, ';')
		e.emittedLine++
		e.prevCol = 0
	}
	if n := len(e.buf); n > 0 && e.buf[n-1] != ';' {
		e.buf = append(e.buf, ',')
	}
	e.buf = vlq.Encode(e.buf, col-e.prevCol)
	e.prevCol = col

	src := e.ensureSource(r.SourceName, content)
	e.buf = vlq.Encode(e.buf, src-e.prevSource)
	e.prevSource = src
	e.buf = vlq.Encode(e.buf, (r.OriginalLine-1)-e.prevLine0)
	e.prevLine0 = r.OriginalLine - 1
	e.buf = vlq.Encode(e.buf, r.OriginalColumn-e.prevCol0)
	e.prevCol0 = r.OriginalColumn

	if r.Name != "" {
		name := e.ensureName(r.Name)
		e.buf = vlq.Encode(e.buf, name-e.prevName)
		e.prevName = name
	}
}

// Encode serializes the tree into a column-accurate Source Map v3 object.
// One segment is emitted at the start of every mapped run; names survive
// the round trip.
func (t *Tree) Encode(opts *Options) *srcmap.Map {
	e := &encoder{
		emittedLine: 1,
		sourceIndex: make(map[string]int),
		nameIndex:   make(map[string]int),
	}
	line, col := 1, 0
	for _, r := range t.runs {
		if r.Mapped && r.Text != "" {
			e.segment(line, col, r, t.ContentOf(r.SourceName))
		}
		line, col = textspan.Advance(line, col, r.Text)
	}
	m := &srcmap.Map{
		Version:  3,
		Sources:  e.sources,
		Names:    e.names,
		Mappings: string(e.buf),
	}
	if m.Sources == nil {
		// "sources" is not optional on the wire; keep it an array.
		m.Sources = []string{}
	}
	if opts != nil {
		m.File = opts.File
	}
	if e.hasContent {
		m.SourcesContent = e.contents
	}
	return m
}
