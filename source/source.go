// Package source implements the wrapper family over generated text: plain
// text, text with a known original, text with an existing source map,
// concatenations, range replacement, line prefixing, memoization and a
// size-only stub. All wrappers expose the same capability set and compose
// the fragment and span engines underneath.
package source

import (
	"errors"
	"fmt"
	"hash"

	"github.com/cranefold/sourcefrag/fragment"
	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

var (
	// ErrNotAvailable signals a capability the concrete source cannot
	// provide, e.g. asking a SizeOnlySource for its text.
	ErrNotAvailable = errors.New("operation not available on this source")
	// ErrInvalidArgument signals a constructor given a value of an
	// unsupported type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MapOptions selects how a source map is produced. Columns selects the
// column-accurate span encoder; without it maps are line-granular.
type MapOptions struct {
	File    string
	Columns bool
}

func (o *MapOptions) file() string {
	if o == nil {
		return ""
	}
	return o.File
}

func (o *MapOptions) columns() bool {
	if o == nil {
		return false
	}
	return o.Columns
}

// Source is the uniform contract of the wrapper family. Map returns a nil
// map (and nil error) for sources that carry no position information.
type Source interface {
	Source() (string, error)
	Buffer() ([]byte, error)
	Size() (int, error)
	Map(opts *MapOptions) (*srcmap.Map, error)
	SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error)
	UpdateHash(h hash.Hash) error
}

// Node returns the column-granular tree form of a source for downstream
// composition. Sources without a map yield a tree of unmapped text.
func Node(s Source, opts *MapOptions) (*span.Tree, error) {
	text, m, err := s.SourceAndMap(opts)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return span.Plain(text), nil
	}
	return span.FromSourceAndMap(text, m)
}

// ListMap returns the line-granular fragment list form of a source.
// Sources without a map yield a list of plain code.
func ListMap(s Source, opts *MapOptions) (*fragment.List, error) {
	text, m, err := s.SourceAndMap(opts)
	if err != nil {
		return nil, err
	}
	if m == nil {
		l := fragment.NewList()
		l.AppendString(text)
		return l, nil
	}
	return fragment.FromSourceAndMap(text, m)
}

// sourceAndMapOf is the shared SourceAndMap implementation for wrappers
// whose Source and Map are independently cheap.
func sourceAndMapOf(s Source, opts *MapOptions) (string, *srcmap.Map, error) {
	text, err := s.Source()
	if err != nil {
		return "", nil, err
	}
	m, err := s.Map(opts)
	if err != nil {
		return "", nil, err
	}
	return text, m, nil
}

// hashText writes a type discriminator, the source text and the mappings
// of a source into the hasher sink.
func hashText(h hash.Hash, kind, text string, m *srcmap.Map) error {
	if _, err := h.Write([]byte(kind)); err != nil {
		return err
	}
	if _, err := h.Write([]byte(text)); err != nil {
		return err
	}
	if m != nil {
		if _, err := h.Write([]byte(m.Mappings)); err != nil {
			return fmt.Errorf("hashing mappings: %w", err)
		}
	}
	return nil
}
