// Package fragment models generated text as an ordered list of fragments,
// each optionally tagged with the original line it was produced from, and
// serializes such a list into a Source Map v3 mappings string.
//
// The fragment family is a closed set: Code (no mapping), Line (one
// original line) and Block (a contiguous run of original lines). Merge
// rules between adjacent fragments are a pure compaction: the concatenated
// text and the per-line mapping are identical whether or not a merge
// happens.
package fragment

import (
	"strings"

	"github.com/cranefold/sourcefrag/internal/textspan"
	"github.com/cranefold/sourcefrag/internal/vlq"
)

// Markers for continuation lines inside a single fragment: "next generated
// line maps to column 0 of the same source, same/next original line".
const (
	sameLineMarker = ";AAAA"
	nextLineMarker = ";AACA"
)

// Fragment is a span of generated text, with or without a mapping back to
// an original source. Implemented by exactly *Code, *Line and *Block.
type Fragment interface {
	// GeneratedText returns the raw generated text of the fragment.
	GeneratedText() string
	// EmitMappings appends the fragment's VLQ segment groups to the
	// running encoder state and returns them. A Code fragment emits only
	// line separators.
	EmitMappings(ctx *Context) string
	// Normalize splits the fragment into single-generated-line units.
	Normalize() []Fragment
	// Merge combines the fragment with an immediately following one when
	// the pairing is compatible. The second return is false when the two
	// fragments must stay separate list entries.
	Merge(other Fragment) (Fragment, bool)
}

var (
	_ Fragment = (*Code)(nil)
	_ Fragment = (*Line)(nil)
	_ Fragment = (*Block)(nil)
)

// Code is generated text with no original position.
type Code struct {
	Text string
}

func (c *Code) GeneratedText() string { return c.Text }

func (c *Code) EmitMappings(ctx *Context) string {
	if c.Text == "" {
		return ""
	}
	lines := textspan.CountLines(c.Text)
	if lines == 0 {
		ctx.UnfinishedColumn += len(c.Text)
		return ""
	}
	ctx.UnfinishedColumn = textspan.TrailingColumn(c.Text)
	return strings.Repeat(";", lines)
}

func (c *Code) Normalize() []Fragment { return []Fragment{c} }

func (c *Code) Merge(other Fragment) (Fragment, bool) {
	if o, ok := other.(*Code); ok {
		return &Code{Text: c.Text + o.Text}, true
	}
	return nil, false
}

// Line is generated text produced from a single original line.
// Its text contains at most one newline, at the end; merging two Lines
// mapped to the same original line may temporarily produce more generated
// lines, which EmitMappings covers with same-line continuation markers.
type Line struct {
	Text           string
	SourceName     string
	OriginalSource *string
	OriginalLine   int // 1-based
}

func (l *Line) GeneratedText() string { return l.Text }

func (l *Line) EmitMappings(ctx *Context) string {
	if l.Text == "" {
		return ""
	}
	idx := ctx.EnsureSource(l.SourceName, l.OriginalSource)
	buf := firstGroup(ctx, idx, l.OriginalLine)
	ctx.CurrentSource = idx
	ctx.CurrentOriginalLine = l.OriginalLine
	lines := textspan.CountLines(l.Text)
	for i := 1; i < lines; i++ {
		buf = append(buf, sameLineMarker...)
	}
	ctx.UnfinishedColumn = textspan.TrailingColumn(l.Text)
	if ctx.UnfinishedColumn == 0 {
		buf = append(buf, ';')
	} else if lines != 0 {
		buf = append(buf, sameLineMarker...)
	}
	return string(buf)
}

func (l *Line) Normalize() []Fragment { return []Fragment{l} }

func (l *Line) Merge(other Fragment) (Fragment, bool) {
	o, ok := other.(*Line)
	if !ok || o.SourceName != l.SourceName || !sameContent(l.OriginalSource, o.OriginalSource) {
		return nil, false
	}
	if o.OriginalLine == l.OriginalLine {
		return &Line{
			Text:           l.Text + o.Text,
			SourceName:     l.SourceName,
			OriginalSource: l.OriginalSource,
			OriginalLine:   l.OriginalLine,
		}, true
	}
	if o.OriginalLine == l.OriginalLine+1 &&
		strings.HasSuffix(l.Text, "\n") &&
		textspan.CountLines(l.Text) == 1 &&
		textspan.CountLines(o.Text) <= 1 {
		return &Block{
			Text:           l.Text + o.Text,
			SourceName:     l.SourceName,
			OriginalSource: l.OriginalSource,
			StartLine:      l.OriginalLine,
		}, true
	}
	return nil, false
}

// Block is generated text produced from consecutive original lines,
// starting at StartLine. Generated line N of the block maps to original
// line StartLine+N.
type Block struct {
	Text           string
	SourceName     string
	OriginalSource *string
	StartLine      int // 1-based
}

func (b *Block) GeneratedText() string { return b.Text }

// LineCount returns the number of newline characters in the block.
func (b *Block) LineCount() int { return textspan.CountLines(b.Text) }

// EndsWithNewline reports whether the block's last character is a newline.
func (b *Block) EndsWithNewline() bool { return strings.HasSuffix(b.Text, "\n") }

func (b *Block) EmitMappings(ctx *Context) string {
	if b.Text == "" {
		return ""
	}
	idx := ctx.EnsureSource(b.SourceName, b.OriginalSource)
	buf := firstGroup(ctx, idx, b.StartLine)
	lines := textspan.CountLines(b.Text)
	ctx.CurrentSource = idx
	ctx.CurrentOriginalLine = b.StartLine + lines - 1
	for i := 1; i < lines; i++ {
		buf = append(buf, nextLineMarker...)
	}
	ctx.UnfinishedColumn = textspan.TrailingColumn(b.Text)
	if ctx.UnfinishedColumn == 0 {
		buf = append(buf, ';')
	} else {
		if lines != 0 {
			buf = append(buf, nextLineMarker...)
		}
		ctx.CurrentOriginalLine++
	}
	return string(buf)
}

func (b *Block) Normalize() []Fragment {
	var out []Fragment
	rest := b.Text
	line := b.StartLine
	for rest != "" {
		text := rest
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			text = rest[:i+1]
		}
		out = append(out, &Line{
			Text:           text,
			SourceName:     b.SourceName,
			OriginalSource: b.OriginalSource,
			OriginalLine:   line,
		})
		rest = rest[len(text):]
		line++
	}
	return out
}

func (b *Block) Merge(other Fragment) (Fragment, bool) {
	switch o := other.(type) {
	case *Line:
		if o.SourceName == b.SourceName && sameContent(b.OriginalSource, o.OriginalSource) &&
			b.EndsWithNewline() &&
			b.StartLine+b.LineCount() == o.OriginalLine &&
			textspan.CountLines(o.Text) <= 1 {
			return &Block{
				Text:           b.Text + o.Text,
				SourceName:     b.SourceName,
				OriginalSource: b.OriginalSource,
				StartLine:      b.StartLine,
			}, true
		}
	case *Block:
		if o.SourceName == b.SourceName && sameContent(b.OriginalSource, o.OriginalSource) &&
			b.EndsWithNewline() &&
			b.StartLine+b.LineCount() == o.StartLine {
			return &Block{
				Text:           b.Text + o.Text,
				SourceName:     b.SourceName,
				OriginalSource: b.OriginalSource,
				StartLine:      b.StartLine,
			}, true
		}
	}
	return nil, false
}

// firstGroup encodes the opening segment group of a mapped fragment:
// either a column-0 marker or a comma plus the carried column of the still
// unfinished generated line, then the source and original line deltas and
// a fixed zero original column.
func firstGroup(ctx *Context, sourceIndex, originalLine int) []byte {
	var buf []byte
	if ctx.UnfinishedColumn > 0 {
		buf = append(buf, ',')
		buf = vlq.Encode(buf, ctx.UnfinishedColumn)
	} else {
		buf = append(buf, 'A')
	}
	buf = vlq.Encode(buf, sourceIndex-ctx.CurrentSource)
	buf = vlq.Encode(buf, originalLine-ctx.CurrentOriginalLine)
	buf = append(buf, 'A')
	return buf
}

func sameContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
