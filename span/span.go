// Package span represents generated text as a flat sequence of
// column-tagged atomic runs. Unlike the line-granular fragment package it
// keeps original columns and names, which makes it the form used for
// range splicing and for column-accurate source maps.
package span

import (
	"strings"

	"github.com/cranefold/sourcefrag/srcmap"
)

// Run is an atomic piece of generated text. A mapped run points at an
// exact original position; builders never produce runs with a newline
// anywhere but the last character, so a run belongs to one generated line.
type Run struct {
	Text           string
	Mapped         bool
	SourceName     string
	OriginalLine   int // 1-based
	OriginalColumn int // 0-based
	Name           string
}

// Tree is an ordered sequence of runs plus the original content recorded
// per source name.
type Tree struct {
	runs     []Run
	contents map[string]*string
}

// NewTree builds a tree over the given runs. contents may be nil.
func NewTree(runs []Run, contents map[string]*string) *Tree {
	return &Tree{runs: runs, contents: contents}
}

// Runs returns the underlying run sequence.
func (t *Tree) Runs() []Run { return t.runs }

// ContentOf returns the recorded original content of a source, if any.
func (t *Tree) ContentOf(name string) *string {
	if t.contents == nil {
		return nil
	}
	return t.contents[name]
}

// String returns the concatenated generated text.
func (t *Tree) String() string {
	var b strings.Builder
	for _, r := range t.runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len returns the total generated text length in bytes.
func (t *Tree) Len() int {
	n := 0
	for _, r := range t.runs {
		n += len(r.Text)
	}
	return n
}

// Plain returns a tree holding text with no mappings at all.
func Plain(text string) *Tree {
	if text == "" {
		return &Tree{}
	}
	return &Tree{runs: []Run{{Text: text}}}
}

// Identity builds the tree of text mapped 1:1 onto itself: every generated
// line points at column 0 of the same line of the named source.
func Identity(text, sourceName string, content *string) *Tree {
	t := &Tree{contents: map[string]*string{sourceName: content}}
	line := 1
	for text != "" {
		chunk := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			chunk = text[:i+1]
		}
		t.runs = append(t.runs, Run{
			Text:         chunk,
			Mapped:       true,
			SourceName:   sourceName,
			OriginalLine: line,
		})
		text = text[len(chunk):]
		line++
	}
	return t
}

// FromSourceAndMap builds a column-accurate tree from generated text and a
// parsed map: each generated line is cut at every segment column, mapped
// cuts keep their original position and name.
func FromSourceAndMap(text string, m *srcmap.Map) (*Tree, error) {
	decoded, err := m.DecodedMappings()
	if err != nil {
		return nil, err
	}
	contents := make(map[string]*string)
	for i, name := range m.Sources {
		if c := m.ContentOf(i); c != nil {
			contents[name] = c
		}
	}

	t := &Tree{contents: contents}
	j := 0
	line := 1
	for text != "" {
		lineText := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			lineText = text[:i+1]
		}
		text = text[len(lineText):]

		start := j
		for j < len(decoded) && decoded[j].GeneratedLine <= line {
			j++
		}
		segs := decoded[start:j]

		pos := 0
		for k, seg := range segs {
			col := seg.GeneratedColumn
			if col > len(lineText) {
				col = len(lineText)
			}
			if col > pos {
				t.runs = append(t.runs, Run{Text: lineText[pos:col]})
				pos = col
			}
			end := len(lineText)
			if k+1 < len(segs) {
				if next := segs[k+1].GeneratedColumn; next >= pos && next < end {
					end = next
				}
			}
			chunk := lineText[pos:end]
			pos = end
			if chunk == "" {
				continue
			}
			run := Run{Text: chunk}
			if seg.HasSource {
				run.Mapped = true
				run.SourceName = m.Sources[seg.SourceIndex]
				run.OriginalLine = seg.OriginalLine
				run.OriginalColumn = seg.OriginalColumn
				if seg.HasName {
					run.Name = m.Names[seg.NameIndex]
				}
			}
			t.runs = append(t.runs, run)
		}
		if pos < len(lineText) {
			t.runs = append(t.runs, Run{Text: lineText[pos:]})
		}
		line++
	}
	return t, nil
}

// Concat joins trees into one, merging their recorded source contents.
// The first tree to record content for a name wins.
func Concat(trees ...*Tree) *Tree {
	out := &Tree{contents: make(map[string]*string)}
	for _, t := range trees {
		out.runs = append(out.runs, t.runs...)
		for name, c := range t.contents {
			if _, ok := out.contents[name]; !ok {
				out.contents[name] = c
			}
		}
	}
	return out
}

// cutAt splits the run sequence at a byte offset. A run straddling the cut
// is divided; the right half of a mapped run keeps the source and line but
// advances the original column by the cut offset and loses its name, since
// a name is only valid at its exact position.
func cutAt(runs []Run, at int) (left, right []Run) {
	if at <= 0 {
		return nil, runs
	}
	pos := 0
	for i, r := range runs {
		if pos+len(r.Text) <= at {
			pos += len(r.Text)
			continue
		}
		off := at - pos
		left = append(left, runs[:i]...)
		if off > 0 {
			head := r
			head.Text = r.Text[:off]
			left = append(left, head)
			tail := r
			tail.Text = r.Text[off:]
			tail.Name = ""
			if tail.Mapped {
				tail.OriginalColumn += off
			}
			right = append(right, tail)
		} else {
			right = append(right, r)
		}
		right = append(right, runs[i+1:]...)
		return left, right
	}
	return runs, nil
}
