package source

import (
	"fmt"
	"hash"

	"github.com/cranefold/sourcefrag/srcmap"
)

// RawSource wraps immutable literal text or bytes with no position
// information. Whichever representation was not supplied is derived on
// first access and kept.
type RawSource struct {
	text    string
	buf     []byte
	hasText bool
	hasBuf  bool
}

// NewRawSource accepts a string or a []byte; anything else fails with
// ErrInvalidArgument.
func NewRawSource(value interface{}) (*RawSource, error) {
	switch v := value.(type) {
	case string:
		return &RawSource{text: v, hasText: true}, nil
	case []byte:
		return &RawSource{buf: v, hasBuf: true}, nil
	default:
		return nil, fmt.Errorf("%w: expected string or []byte, got %T", ErrInvalidArgument, value)
	}
}

// NewRawStringSource wraps a string.
func NewRawStringSource(text string) *RawSource {
	return &RawSource{text: text, hasText: true}
}

func (s *RawSource) Source() (string, error) {
	if !s.hasText {
		s.text = string(s.buf)
		s.hasText = true
	}
	return s.text, nil
}

func (s *RawSource) Buffer() ([]byte, error) {
	if !s.hasBuf {
		s.buf = []byte(s.text)
		s.hasBuf = true
	}
	return s.buf, nil
}

func (s *RawSource) Size() (int, error) {
	if s.hasBuf {
		return len(s.buf), nil
	}
	return len(s.text), nil
}

func (s *RawSource) Map(*MapOptions) (*srcmap.Map, error) {
	return nil, nil
}

func (s *RawSource) SourceAndMap(*MapOptions) (string, *srcmap.Map, error) {
	text, err := s.Source()
	return text, nil, err
}

func (s *RawSource) UpdateHash(h hash.Hash) error {
	text, _ := s.Source()
	return hashText(h, "raw", text, nil)
}
