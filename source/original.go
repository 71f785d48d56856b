package source

import (
	"hash"

	"github.com/cranefold/sourcefrag/fragment"
	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

// OriginalSource is literal text known to be the verbatim content of one
// named original: every generated line maps onto the same line of that
// original, and the text itself populates sourcesContent.
type OriginalSource struct {
	text string
	name string
}

func NewOriginalSource(text, name string) *OriginalSource {
	return &OriginalSource{text: text, name: name}
}

// Name returns the original's source name.
func (s *OriginalSource) Name() string { return s.name }

func (s *OriginalSource) Source() (string, error) { return s.text, nil }

func (s *OriginalSource) Buffer() ([]byte, error) { return []byte(s.text), nil }

func (s *OriginalSource) Size() (int, error) { return len(s.text), nil }

func (s *OriginalSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	if opts.columns() {
		return span.Identity(s.text, s.name, &s.text).Encode(&span.Options{File: opts.file()}), nil
	}
	l := fragment.NewList()
	l.AppendMapped(s.text, s.name, &s.text, 1)
	_, m := l.ToSourceAndMap(&fragment.Options{File: opts.file()})
	return m, nil
}

func (s *OriginalSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *OriginalSource) UpdateHash(h hash.Hash) error {
	return hashText(h, "original:"+s.name, s.text, nil)
}
