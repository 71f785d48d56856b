package source

import (
	"hash"

	"github.com/cranefold/sourcefrag/srcmap"
)

// mapKey is the canonical cache key for map options: only the fields that
// influence the result participate, so differently shaped but equal
// options hit the same entry.
type mapKey struct {
	file    string
	columns bool
}

func keyOf(opts *MapOptions) mapKey {
	return mapKey{file: opts.file(), columns: opts.columns()}
}

type cachedMap struct {
	m *srcmap.Map
}

// CachedSource memoizes the text, buffer, size and maps of a wrapped
// source. Entries are computed once and never invalidated within the
// instance's lifetime.
type CachedSource struct {
	inner Source

	text *string
	buf  []byte
	size *int
	maps map[mapKey]cachedMap
}

func NewCachedSource(inner Source) *CachedSource {
	return &CachedSource{inner: inner, maps: make(map[mapKey]cachedMap)}
}

// Original returns the wrapped source.
func (s *CachedSource) Original() Source { return s.inner }

func (s *CachedSource) Source() (string, error) {
	if s.text != nil {
		return *s.text, nil
	}
	text, err := s.inner.Source()
	if err != nil {
		return "", err
	}
	s.text = &text
	return text, nil
}

func (s *CachedSource) Buffer() ([]byte, error) {
	if s.buf != nil {
		return s.buf, nil
	}
	buf, err := s.inner.Buffer()
	if err != nil {
		return nil, err
	}
	s.buf = buf
	return buf, nil
}

func (s *CachedSource) Size() (int, error) {
	if s.size != nil {
		return *s.size, nil
	}
	n, err := s.inner.Size()
	if err != nil {
		return 0, err
	}
	s.size = &n
	return n, nil
}

func (s *CachedSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	key := keyOf(opts)
	if entry, ok := s.maps[key]; ok {
		return entry.m, nil
	}
	m, err := s.inner.Map(opts)
	if err != nil {
		return nil, err
	}
	s.maps[key] = cachedMap{m: m}
	return m, nil
}

func (s *CachedSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *CachedSource) UpdateHash(h hash.Hash) error {
	return s.inner.UpdateHash(h)
}
