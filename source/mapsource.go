package source

import (
	"hash"

	"github.com/cranefold/sourcefrag/fragment"
	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

// SourceMapSource is generated text that already carries a source map.
// When the text is itself the output of an earlier transform, the inner
// text and its map can be supplied too; maps are then composed so they
// resolve all the way back to the first original.
type SourceMapSource struct {
	text string
	name string
	m    *srcmap.Map

	innerName string
	innerText string
	innerMap  *srcmap.Map
}

func NewSourceMapSource(text, name string, m *srcmap.Map) *SourceMapSource {
	return &SourceMapSource{text: text, name: name, m: m}
}

// NewNestedSourceMapSource layers the source on an inner transform:
// innerText is the intermediate text the outer map's positions refer to
// under innerName, and innerMap maps that text to the first original.
func NewNestedSourceMapSource(text, name string, m *srcmap.Map, innerName, innerText string, innerMap *srcmap.Map) *SourceMapSource {
	return &SourceMapSource{
		text:      text,
		name:      name,
		m:         m,
		innerName: innerName,
		innerText: innerText,
		innerMap:  innerMap,
	}
}

func (s *SourceMapSource) Source() (string, error) { return s.text, nil }

func (s *SourceMapSource) Buffer() ([]byte, error) { return []byte(s.text), nil }

func (s *SourceMapSource) Size() (int, error) { return len(s.text), nil }

func (s *SourceMapSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	// Composition needs column fidelity, so the nested case always goes
	// through the span form.
	if s.innerMap != nil {
		tree, err := span.FromSourceAndMap(s.text, s.m)
		if err != nil {
			return nil, err
		}
		tree, err = span.Rebase(tree, s.innerName, s.innerText, s.innerMap)
		if err != nil {
			return nil, err
		}
		return tree.Encode(&span.Options{File: opts.file()}), nil
	}
	if opts.columns() {
		tree, err := span.FromSourceAndMap(s.text, s.m)
		if err != nil {
			return nil, err
		}
		return tree.Encode(&span.Options{File: opts.file()}), nil
	}
	l, err := fragment.FromSourceAndMap(s.text, s.m)
	if err != nil {
		return nil, err
	}
	_, m := l.ToSourceAndMap(&fragment.Options{File: opts.file()})
	return m, nil
}

func (s *SourceMapSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *SourceMapSource) UpdateHash(h hash.Hash) error {
	return hashText(h, "sourcemap:"+s.name, s.text, s.m)
}
