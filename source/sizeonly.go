package source

import (
	"fmt"
	"hash"

	"github.com/cranefold/sourcefrag/srcmap"
)

// SizeOnlySource remembers nothing but a byte count. It stands in for a
// source whose content has already been emitted and discarded; every
// accessor other than Size fails with ErrNotAvailable.
type SizeOnlySource struct {
	size int
}

func NewSizeOnlySource(size int) *SizeOnlySource {
	return &SizeOnlySource{size: size}
}

func (s *SizeOnlySource) Source() (string, error) {
	return "", fmt.Errorf("%w: content was not retained", ErrNotAvailable)
}

func (s *SizeOnlySource) Buffer() ([]byte, error) {
	return nil, fmt.Errorf("%w: content was not retained", ErrNotAvailable)
}

func (s *SizeOnlySource) Size() (int, error) { return s.size, nil }

func (s *SizeOnlySource) Map(*MapOptions) (*srcmap.Map, error) {
	return nil, fmt.Errorf("%w: map was not retained", ErrNotAvailable)
}

func (s *SizeOnlySource) SourceAndMap(*MapOptions) (string, *srcmap.Map, error) {
	return "", nil, fmt.Errorf("%w: content was not retained", ErrNotAvailable)
}

func (s *SizeOnlySource) UpdateHash(h hash.Hash) error {
	return fmt.Errorf("%w: content was not retained", ErrNotAvailable)
}
