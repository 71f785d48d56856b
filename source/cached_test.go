package source

import (
	"hash"
	"testing"

	"github.com/cranefold/sourcefrag/srcmap"
)

// countingSource wraps a source and counts delegated calls.
type countingSource struct {
	inner       Source
	sourceCalls int
	mapCalls    int
}

func (s *countingSource) Source() (string, error) {
	s.sourceCalls++
	return s.inner.Source()
}

func (s *countingSource) Buffer() ([]byte, error) { return s.inner.Buffer() }

func (s *countingSource) Size() (int, error) { return s.inner.Size() }

func (s *countingSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	s.mapCalls++
	return s.inner.Map(opts)
}

func (s *countingSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(s, opts)
}

func (s *countingSource) UpdateHash(h hash.Hash) error { return s.inner.UpdateHash(h) }

func TestCachedSourceMemoizesText(t *testing.T) {
	counting := &countingSource{inner: NewOriginalSource("abc", "x.js")}
	s := NewCachedSource(counting)
	for i := 0; i < 3; i++ {
		text, err := s.Source()
		if err != nil {
			t.Fatalf("Source() returned error: %v", err)
		}
		if text != "abc" {
			t.Errorf("Source() = %q, want %q", text, "abc")
		}
	}
	if counting.sourceCalls != 1 {
		t.Errorf("inner Source() called %d times, want 1", counting.sourceCalls)
	}
}

func TestCachedSourceMemoizesMapPerOptions(t *testing.T) {
	counting := &countingSource{inner: NewOriginalSource("abc", "x.js")}
	s := NewCachedSource(counting)

	// Differently shaped but equal options share one cache entry.
	if _, err := s.Map(nil); err != nil {
		t.Fatalf("Map(nil) returned error: %v", err)
	}
	if _, err := s.Map(&MapOptions{}); err != nil {
		t.Fatalf("Map(&MapOptions{}) returned error: %v", err)
	}
	if counting.mapCalls != 1 {
		t.Errorf("inner Map() called %d times for equal options, want 1", counting.mapCalls)
	}

	if _, err := s.Map(&MapOptions{Columns: true}); err != nil {
		t.Fatalf("Map(columns) returned error: %v", err)
	}
	if counting.mapCalls != 2 {
		t.Errorf("inner Map() called %d times after a new option set, want 2", counting.mapCalls)
	}
}

func TestCachedSourceMemoizesNilMap(t *testing.T) {
	counting := &countingSource{inner: NewRawStringSource("abc")}
	s := NewCachedSource(counting)
	for i := 0; i < 2; i++ {
		m, err := s.Map(nil)
		if err != nil {
			t.Fatalf("Map() returned error: %v", err)
		}
		if m != nil {
			t.Errorf("Map() = %v, want nil", m)
		}
	}
	if counting.mapCalls != 1 {
		t.Errorf("inner Map() called %d times, want 1 even for a nil result", counting.mapCalls)
	}
}

func TestCachedSourceOriginal(t *testing.T) {
	inner := NewRawStringSource("x")
	if s := NewCachedSource(inner); s.Original() != inner {
		t.Error("Original() returned a different source")
	}
}
