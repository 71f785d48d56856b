package source

import (
	"hash"

	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

// ReplaceSource wraps a source and an ordered set of range replacements.
// Mappings outside the edited ranges are preserved; the edits themselves
// carry no mapping unless a name is supplied for an edit landing on a
// mapped position.
type ReplaceSource struct {
	inner Source
	reps  span.ReplacementSet
}

func NewReplaceSource(inner Source) *ReplaceSource {
	return &ReplaceSource{inner: inner}
}

// Replace substitutes the inclusive byte range [start, end] of the
// generated text with text.
func (s *ReplaceSource) Replace(start, end int, text, name string) {
	s.reps.Add(start, end, text, name)
}

// Insert inserts text before pos without consuming any generated text.
func (s *ReplaceSource) Insert(pos int, text, name string) {
	s.reps.Insert(pos, text, name)
}

// Original returns the wrapped source.
func (s *ReplaceSource) Original() Source { return s.inner }

func (s *ReplaceSource) Source() (string, error) {
	text, err := s.inner.Source()
	if err != nil {
		return "", err
	}
	return s.reps.SpliceString(text), nil
}

func (s *ReplaceSource) Buffer() ([]byte, error) {
	text, err := s.Source()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (s *ReplaceSource) Size() (int, error) {
	text, err := s.Source()
	if err != nil {
		return 0, err
	}
	return len(text), nil
}

func (s *ReplaceSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	inner, err := s.inner.Map(opts)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	tree, err := Node(s.inner, opts)
	if err != nil {
		return nil, err
	}
	return s.reps.Splice(tree).Encode(&span.Options{File: opts.file()}), nil
}

func (s *ReplaceSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *ReplaceSource) UpdateHash(h hash.Hash) error {
	text, err := s.Source()
	if err != nil {
		return err
	}
	return hashText(h, "replace", text, nil)
}
