package span

import (
	"strings"

	"github.com/cranefold/sourcefrag/internal/textspan"
	"github.com/cranefold/sourcefrag/srcmap"
)

// posRun is a run of the inner generated text tagged with the column it
// starts at on its line.
type posRun struct {
	col int
	run Run
}

// Rebase re-resolves every run of outer that points into innerName through
// the inner map, so a doubly transformed text maps all the way back to the
// first original. A run is re-pointed only when its text matches the inner
// generated text at the referenced position; on mismatch (drift between
// the two transforms) the run keeps its mapping into the intermediate
// text, whose content is recorded so the result stays self-contained.
func Rebase(outer *Tree, innerName, innerText string, inner *srcmap.Map) (*Tree, error) {
	innerTree, err := FromSourceAndMap(innerText, inner)
	if err != nil {
		return nil, err
	}

	byLine := make(map[int][]posRun)
	line, col := 1, 0
	for _, r := range innerTree.runs {
		byLine[line] = append(byLine[line], posRun{col: col, run: r})
		line, col = textspan.Advance(line, col, r.Text)
	}
	innerLines := strings.SplitAfter(innerText, "\n")

	contents := make(map[string]*string)
	for name, c := range innerTree.contents {
		contents[name] = c
	}
	for name, c := range outer.contents {
		if _, ok := contents[name]; !ok {
			contents[name] = c
		}
	}
	if _, ok := contents[innerName]; !ok {
		contents[innerName] = &innerText
	}

	out := &Tree{contents: contents}
	for _, r := range outer.runs {
		if !r.Mapped || r.SourceName != innerName {
			out.runs = append(out.runs, r)
			continue
		}
		target, ok := lookup(byLine[r.OriginalLine], r.OriginalColumn)
		if !ok || !target.run.Mapped || !matchesAt(innerLines, r) {
			out.runs = append(out.runs, r)
			continue
		}
		offset := r.OriginalColumn - target.col
		rebased := r
		rebased.SourceName = target.run.SourceName
		rebased.OriginalLine = target.run.OriginalLine
		rebased.OriginalColumn = target.run.OriginalColumn + offset
		if offset == 0 && target.run.Name != "" {
			rebased.Name = target.run.Name
		}
		out.runs = append(out.runs, rebased)
	}
	return out, nil
}

// lookup finds the run on one inner generated line that covers the column.
func lookup(runs []posRun, col int) (posRun, bool) {
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].col <= col {
			if col < runs[i].col+len(runs[i].run.Text) {
				return runs[i], true
			}
			return posRun{}, false
		}
	}
	return posRun{}, false
}

// matchesAt reports whether the run's text occurs verbatim in the inner
// generated text at the position the run claims to come from.
func matchesAt(innerLines []string, r Run) bool {
	i := r.OriginalLine - 1
	if i < 0 || i >= len(innerLines) {
		return false
	}
	rest := innerLines[i][min(r.OriginalColumn, len(innerLines[i])):]
	return strings.HasPrefix(rest, r.Text)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
