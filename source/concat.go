package source

import (
	"fmt"
	"hash"
	"strings"

	"github.com/cranefold/sourcefrag/fragment"
	"github.com/cranefold/sourcefrag/span"
	"github.com/cranefold/sourcefrag/srcmap"
)

// ConcatSource is the ordered concatenation of other sources. Its text,
// size and map equal those of the naive concatenation; adjacent children
// without position information are lazily coalesced into a single raw
// child so long chains of small appends stay cheap.
type ConcatSource struct {
	children  []Source
	optimized bool
}

// NewConcatSource accepts Source values and plain strings.
func NewConcatSource(items ...interface{}) (*ConcatSource, error) {
	c := &ConcatSource{}
	for _, item := range items {
		if err := c.Add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a child. Strings are wrapped as raw text.
func (c *ConcatSource) Add(item interface{}) error {
	switch v := item.(type) {
	case Source:
		c.children = append(c.children, v)
	case string:
		c.children = append(c.children, NewRawStringSource(v))
	default:
		return fmt.Errorf("%w: expected Source or string, got %T", ErrInvalidArgument, item)
	}
	c.optimized = false
	return nil
}

// optimizedChildren coalesces neighboring raw children. The synthetic
// RawSource standing in for a merged run is marked by construction here,
// never by a global registry.
func (c *ConcatSource) optimizedChildren() ([]Source, error) {
	if c.optimized {
		return c.children, nil
	}
	var out []Source
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			out = append(out, NewRawStringSource(pending.String()))
			pending.Reset()
		}
	}
	for _, child := range c.children {
		if raw, ok := child.(*RawSource); ok {
			text, err := raw.Source()
			if err != nil {
				return nil, err
			}
			pending.WriteString(text)
			continue
		}
		flush()
		out = append(out, child)
	}
	flush()
	c.children = out
	c.optimized = true
	return out, nil
}

func (c *ConcatSource) Source() (string, error) {
	children, err := c.optimizedChildren()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, child := range children {
		text, err := child.Source()
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func (c *ConcatSource) Buffer() ([]byte, error) {
	text, err := c.Source()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (c *ConcatSource) Size() (int, error) {
	children, err := c.optimizedChildren()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, child := range children {
		n, err := child.Size()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *ConcatSource) Map(opts *MapOptions) (*srcmap.Map, error) {
	children, err := c.optimizedChildren()
	if err != nil {
		return nil, err
	}
	if opts.columns() {
		trees := make([]*span.Tree, 0, len(children))
		for _, child := range children {
			t, err := Node(child, opts)
			if err != nil {
				return nil, err
			}
			trees = append(trees, t)
		}
		return span.Concat(trees...).Encode(&span.Options{File: opts.file()}), nil
	}
	combined := fragment.NewList()
	for _, child := range children {
		l, err := ListMap(child, opts)
		if err != nil {
			return nil, err
		}
		combined.AppendList(l)
	}
	_, m := combined.ToSourceAndMap(&fragment.Options{File: opts.file()})
	return m, nil
}

func (c *ConcatSource) SourceAndMap(opts *MapOptions) (string, *srcmap.Map, error) {
	return sourceAndMapOf(c, opts)
}

func (c *ConcatSource) UpdateHash(h hash.Hash) error {
	children, err := c.optimizedChildren()
	if err != nil {
		return err
	}
	if _, err := h.Write([]byte("concat")); err != nil {
		return err
	}
	for _, child := range children {
		if err := child.UpdateHash(h); err != nil {
			return err
		}
	}
	return nil
}
