package fragment

import (
	"strings"

	"github.com/cranefold/sourcefrag/srcmap"
)

// FromSourceAndMap reconstructs a fragment list from generated text and an
// already-parsed source map. Mapped runs become Line fragments, anything
// the map leaves uncovered becomes plain Code, and generated lines beyond
// the map's line count are appended as a final unmapped block.
//
// The original column of each segment is dropped: the fragment model is
// line-granular. Fails with srcmap.ErrMalformed when the map references a
// source out of bounds or a VLQ group cannot be decoded.
func FromSourceAndMap(text string, m *srcmap.Map) (*List, error) {
	decoded, err := m.DecodedMappings()
	if err != nil {
		return nil, err
	}

	list := &List{}
	lines := splitLines(text)
	j := 0
	for i, lineText := range lines {
		genLine := i + 1
		start := j
		for j < len(decoded) && decoded[j].GeneratedLine <= genLine {
			j++
		}
		segs := decoded[start:j]
		if len(segs) == 0 {
			// No more mappings: the rest of the text is one unmapped block.
			if j == len(decoded) {
				var rest strings.Builder
				for _, lt := range lines[i:] {
					rest.WriteString(lt)
				}
				list.Append(&Code{Text: rest.String()})
				return list, nil
			}
			list.Append(&Code{Text: lineText})
			continue
		}

		pos := 0
		for k, seg := range segs {
			col := seg.GeneratedColumn
			if col > len(lineText) {
				col = len(lineText)
			}
			if col > pos {
				list.Append(&Code{Text: lineText[pos:col]})
				pos = col
			}
			end := len(lineText)
			if k+1 < len(segs) {
				if next := segs[k+1].GeneratedColumn; next < end {
					end = next
				}
			}
			if end < pos {
				end = pos
			}
			chunk := lineText[pos:end]
			pos = end
			if chunk == "" {
				continue
			}
			if seg.HasSource {
				list.Append(&Line{
					Text:           chunk,
					SourceName:     m.Sources[seg.SourceIndex],
					OriginalSource: m.ContentOf(seg.SourceIndex),
					OriginalLine:   seg.OriginalLine,
				})
			} else {
				list.Append(&Code{Text: chunk})
			}
		}
		if pos < len(lineText) {
			list.Append(&Code{Text: lineText[pos:]})
		}
	}
	return list, nil
}
