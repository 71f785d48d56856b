package fragment

import (
	"strings"

	"github.com/cranefold/sourcefrag/srcmap"
)

// Options controls serialization of a List into a source map.
type Options struct {
	// File is copied into the map's "file" field when non-empty.
	File string
}

// List is an ordered sequence of fragments. Appending merges into the tail
// fragment when the pairing allows it, so repeated small appends stay
// compact.
type List struct {
	children []Fragment
}

// NewList returns a list over the given fragments, without merging them.
func NewList(fragments ...Fragment) *List {
	return &List{children: fragments}
}

// Fragments returns the underlying fragment sequence.
func (l *List) Fragments() []Fragment { return l.children }

// Append adds a fragment at the end of the list, merging it into the
// current tail when compatible.
func (l *List) Append(f Fragment) {
	if n := len(l.children); n > 0 {
		if merged, ok := l.children[n-1].Merge(f); ok {
			l.children[n-1] = merged
			return
		}
	}
	l.children = append(l.children, f)
}

// AppendString adds plain generated text.
func (l *List) AppendString(s string) {
	l.Append(&Code{Text: s})
}

// AppendMapped adds generated text attributed to consecutive original
// lines of the named source, starting at startLine.
func (l *List) AppendMapped(s, sourceName string, content *string, startLine int) {
	l.Append(&Block{Text: s, SourceName: sourceName, OriginalSource: content, StartLine: startLine})
}

// AppendList splices another list's fragments onto the end.
func (l *List) AppendList(other *List) {
	for _, f := range other.children {
		l.Append(f)
	}
}

// Prepend adds a fragment at the front of the list, merging the current
// head into it when compatible.
func (l *List) Prepend(f Fragment) {
	if len(l.children) > 0 {
		if merged, ok := f.Merge(l.children[0]); ok {
			l.children[0] = merged
			return
		}
	}
	l.children = append([]Fragment{f}, l.children...)
}

// PrependString adds plain generated text at the front.
func (l *List) PrependString(s string) {
	l.Prepend(&Code{Text: s})
}

// String returns the concatenated generated text of all fragments.
func (l *List) String() string {
	var b strings.Builder
	for _, f := range l.children {
		b.WriteString(f.GeneratedText())
	}
	return b.String()
}

// MapGeneratedText rebuilds the list with fn applied to the text of every
// single-generated-line unit, keeping each unit's mapping tag. fn receives
// units in order; each unit never spans more than one generated line, with
// the trailing newline included, but a unit can be a partial line when a
// fragment boundary falls mid-line.
func (l *List) MapGeneratedText(fn func(string) string) *List {
	out := &List{}
	for _, f := range l.children {
		for _, unit := range f.Normalize() {
			switch t := unit.(type) {
			case *Code:
				for _, line := range splitLines(t.Text) {
					out.Append(&Code{Text: fn(line)})
				}
			case *Line:
				out.Append(&Line{
					Text:           fn(t.Text),
					SourceName:     t.SourceName,
					OriginalSource: t.OriginalSource,
					OriginalLine:   t.OriginalLine,
				})
			}
		}
	}
	return out
}

// normalized flattens every fragment into single-line units and greedily
// merges adjacent compatible units left to right. This fixes the final
// segment granularity but never changes the serialized text or the
// resolved mapping.
func (l *List) normalized() []Fragment {
	var merged []Fragment
	for _, f := range l.children {
		for _, unit := range f.Normalize() {
			if n := len(merged); n > 0 {
				if m, ok := merged[n-1].Merge(unit); ok {
					merged[n-1] = m
					continue
				}
			}
			merged = append(merged, unit)
		}
	}
	return merged
}

// ToSourceAndMap serializes the list: the concatenated text plus a Source
// Map v3 object whose mappings cover every mapped fragment. sourcesContent
// is included only when at least one source supplied original text.
func (l *List) ToSourceAndMap(opts *Options) (string, *srcmap.Map) {
	ctx := NewContext()
	var src, mappings strings.Builder
	for _, f := range l.normalized() {
		src.WriteString(f.GeneratedText())
		mappings.WriteString(f.EmitMappings(ctx))
	}
	m := &srcmap.Map{
		Version:  3,
		Sources:  ctx.Sources(),
		Mappings: mappings.String(),
	}
	if m.Sources == nil {
		// "sources" is not optional on the wire; keep it an array.
		m.Sources = []string{}
	}
	if opts != nil {
		m.File = opts.File
	}
	if ctx.HasSourceContent {
		m.SourcesContent = ctx.SourcesContent()
	}
	return src.String(), m
}

// splitLines cuts s after every newline, keeping the newline with the line
// it terminates.
func splitLines(s string) []string {
	var out []string
	for s != "" {
		line := s
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line = s[:i+1]
		}
		out = append(out, line)
		s = s[len(line):]
	}
	return out
}
