package source

import (
	"hash"
	"strings"

	"github.com/cranefold/sourcefrag/fragment"
	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

// PrefixSource prepends a literal prefix to every logical line of the
// wrapped source, the first line included. Empty lines keep no prefix.
// Generated columns of mapped text shift by the prefix length.
type PrefixSource struct {
	prefix string
	inner  Source
}

func NewPrefixSource(prefix string, inner Source) *PrefixSource {
	return &PrefixSource{prefix: prefix, inner: inner}
}

func (s *PrefixSource) Source() (string, error) {
	text, err := s.inner.Source()
	if err != nil {
		return "", err
	}
	return prefixText(s.prefix, text), nil
}

func (s *PrefixSource) Buffer() ([]byte, error) {
	text, err := s.Source()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (s *PrefixSource) Size() (int, error) {
	text, err := s.Source()
	if err != nil {
		return 0, err
	}
	return len(text), nil
}

func (s *PrefixSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	inner, err := s.inner.Map(opts)
	if err != nil || inner == nil {
		return nil, err
	}
	if opts.columns() {
		tree, err := Node(s.inner, opts)
		if err != nil {
			return nil, err
		}
		return prefixTree(s.prefix, tree).Encode(&span.Options{File: opts.file()}), nil
	}
	l, err := ListMap(s.inner, opts)
	if err != nil {
		return nil, err
	}
	// Units can be partial lines, so the prefix goes in only when the
	// previous unit finished its line, matching prefixText's output.
	first := true
	atLineStart := true
	prefixed := l.MapGeneratedText(func(unit string) string {
		here := atLineStart && (first || (unit != "" && unit[0] != '\n'))
		first = false
		if unit != "" {
			atLineStart = strings.HasSuffix(unit, "\n")
		}
		if here {
			return s.prefix + unit
		}
		return unit
	})
	_, m := prefixed.ToSourceAndMap(&fragment.Options{File: opts.file()})
	return m, nil
}

func (s *PrefixSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *PrefixSource) UpdateHash(h hash.Hash) error {
	text, err := s.Source()
	if err != nil {
		return err
	}
	return hashText(h, "prefix:"+s.prefix, text, nil)
}

// prefixText inserts the prefix at the start and after every newline that
// is followed by at least one non-newline character.
func prefixText(prefix, text string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i+1])
		text = text[i+1:]
		if text != "" && text[0] != '\n' {
			b.WriteString(prefix)
		}
	}
}

// prefixTree inserts unmapped prefix runs at line starts, matching
// prefixText's output exactly.
func prefixTree(prefix string, t *span.Tree) *span.Tree {
	out := []span.Run{{Text: prefix}}
	atLineStart := false
	for _, r := range t.Runs() {
		text := r.Text
		for text != "" {
			chunk := text
			if i := strings.IndexByte(text, '\n'); i >= 0 {
				chunk = text[:i+1]
			}
			if atLineStart && chunk[0] != '\n' {
				out = append(out, span.Run{Text: prefix})
			}
			piece := r
			piece.Text = chunk
			out = append(out, piece)
			atLineStart = strings.HasSuffix(chunk, "\n")
			text = text[len(chunk):]
		}
	}
	return span.NewTree(out, treeContents(t))
}

// treeContents copies the recorded original contents of a tree's sources.
func treeContents(t *span.Tree) map[string]*string {
	contents := make(map[string]*string)
	for _, r := range t.Runs() {
		if r.Mapped {
			if _, ok := contents[r.SourceName]; !ok {
				if c := t.ContentOf(r.SourceName); c != nil {
					contents[r.SourceName] = c
				}
			}
		}
	}
	return contents
}
