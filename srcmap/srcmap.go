// Package srcmap reads and writes Source Map v3 objects, modeled after
// github.com/neelance/sourcemap with the sourcesContent field added.
package srcmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cranefold/sourcefrag/internal/vlq"
)

// ErrMalformed is returned when a map's mappings string is inconsistent
// with its sources or names arrays, or cannot be decoded at all.
var ErrMalformed = errors.New("malformed source map")

// Map is the wire representation of a Source Map v3 object.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names,omitempty"`
	Mappings       string    `json:"mappings"`
}

// ReadFrom decodes a JSON source map.
func ReadFrom(r io.Reader) (*Map, error) {
	var m Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Version != 0 && m.Version != 3 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, m.Version)
	}
	return &m, nil
}

// WriteTo encodes the map as JSON. A zero Version is defaulted to 3.
func (m *Map) WriteTo(w io.Writer) error {
	if m.Version == 0 {
		m.Version = 3
	}
	return json.NewEncoder(w).Encode(m)
}

// ContentOf returns the recorded original content for source index i, or
// nil when the map carries none.
func (m *Map) ContentOf(i int) *string {
	if i < 0 || i >= len(m.SourcesContent) {
		return nil
	}
	return m.SourcesContent[i]
}

// Mapping is a single decoded segment with all deltas resolved.
type Mapping struct {
	GeneratedLine   int // 1-based
	GeneratedColumn int // 0-based
	SourceIndex     int
	OriginalLine    int // 1-based
	OriginalColumn  int // 0-based
	NameIndex       int
	HasSource       bool
	HasName         bool
}

// DecodedMappings resolves the VLQ mappings string into absolute positions.
// Segment groups of 1, 4 and 5 fields are accepted; anything else, a source
// or name index out of bounds, or a VLQ error fails with ErrMalformed.
func (m *Map) DecodedMappings() ([]Mapping, error) {
	var out []Mapping
	src, line0, col0, name := 0, 0, 0, 0
	for li, group := range strings.Split(m.Mappings, ";") {
		genCol := 0
		for _, seg := range strings.Split(group, ",") {
			if seg == "" {
				continue
			}
			var fields [5]int
			n, pos := 0, 0
			for pos < len(seg) {
				if n == 5 {
					return nil, fmt.Errorf("%w: segment %q has more than 5 fields", ErrMalformed, seg)
				}
				v, next, err := vlq.Decode(seg, pos)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, li+1, err)
				}
				fields[n] = v
				n++
				pos = next
			}
			genCol += fields[0]
			if genCol < 0 {
				return nil, fmt.Errorf("%w: negative generated column on line %d", ErrMalformed, li+1)
			}
			mp := Mapping{GeneratedLine: li + 1, GeneratedColumn: genCol}
			switch n {
			case 1:
			case 4, 5:
				src += fields[1]
				line0 += fields[2]
				col0 += fields[3]
				if src < 0 || src >= len(m.Sources) {
					return nil, fmt.Errorf("%w: source index %d out of bounds", ErrMalformed, src)
				}
				if line0 < 0 || col0 < 0 {
					return nil, fmt.Errorf("%w: negative original position on line %d", ErrMalformed, li+1)
				}
				mp.HasSource = true
				mp.SourceIndex = src
				mp.OriginalLine = line0 + 1
				mp.OriginalColumn = col0
				if n == 5 {
					name += fields[4]
					if name < 0 || name >= len(m.Names) {
						return nil, fmt.Errorf("%w: name index %d out of bounds", ErrMalformed, name)
					}
					mp.HasName = true
					mp.NameIndex = name
				}
			default:
				return nil, fmt.Errorf("%w: segment %q has %d fields", ErrMalformed, seg, n)
			}
			out = append(out, mp)
		}
	}
	return out, nil
}
