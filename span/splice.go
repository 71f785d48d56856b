package span

import "sort"

// Replacement substitutes the inclusive byte range [Start, End] of the
// generated text with Text. A zero-width insertion before position p is
// expressed as Start=p, End=p-1. Name, when non-empty, labels the
// replacement text with an identifier name if the replaced position was
// mapped.
type Replacement struct {
	Start int
	End   int
	Text  string
	Name  string

	// order is the insertion sequence number; it breaks ties between
	// replacements sharing the same range so that the text of multiple
	// inserts at one point concatenates in insertion order.
	order int
}

// ReplacementSet accumulates replacements in caller order.
type ReplacementSet struct {
	reps []Replacement
}

// Add records a replacement of the inclusive range [start, end].
func (s *ReplacementSet) Add(start, end int, text, name string) {
	s.reps = append(s.reps, Replacement{Start: start, End: end, Text: text, Name: name, order: len(s.reps)})
}

// Insert records a zero-width insertion before pos.
func (s *ReplacementSet) Insert(pos int, text, name string) {
	s.Add(pos, pos-1, text, name)
}

// Len returns the number of recorded replacements.
func (s *ReplacementSet) Len() int { return len(s.reps) }

// sorted returns the replacements ordered for right-to-left application:
// by end descending, then start descending, then insertion order
// descending. Working rightmost-first keeps earlier offsets valid while
// later ranges are already spliced.
func (s *ReplacementSet) sorted() []Replacement {
	reps := append([]Replacement(nil), s.reps...)
	sort.SliceStable(reps, func(i, j int) bool {
		a, b := reps[i], reps[j]
		if a.End != b.End {
			return a.End > b.End
		}
		if a.Start != b.Start {
			return a.Start > b.Start
		}
		return a.order > b.order
	})
	return reps
}

// SpliceString applies the replacement set to plain text.
func (s *ReplacementSet) SpliceString(text string) string {
	for _, r := range s.sorted() {
		start, end := clampRange(r.Start, r.End, len(text))
		text = text[:start] + r.Text + text[end:]
	}
	return text
}

// Splice applies the replacement set to a tree. Mappings outside the
// replaced ranges are preserved; replacement text is unmapped unless the
// run at the replacement start was mapped, in which case the replacement
// inherits that run's original position plus the caller-supplied name.
func (s *ReplacementSet) Splice(base *Tree) *Tree {
	runs := base.runs
	for _, r := range s.sorted() {
		start, end := clampRange(r.Start, r.End, runsLen(runs))
		head, tail := cutAt(runs, end)
		prefix, cut := cutAt(head, start)
		insert := replacementRun(r, cut)
		runs = make([]Run, 0, len(prefix)+len(insert)+len(tail))
		runs = append(runs, prefix...)
		runs = append(runs, insert...)
		runs = append(runs, tail...)
	}
	return &Tree{runs: runs, contents: base.contents}
}

// replacementRun builds the runs standing in for a replacement. cut is the
// replaced run sequence; its first run donates the original position when
// the caller asked for a named mapping.
func replacementRun(r Replacement, cut []Run) []Run {
	if r.Text == "" {
		return nil
	}
	run := Run{Text: r.Text}
	if r.Name != "" && len(cut) > 0 && cut[0].Mapped {
		run.Mapped = true
		run.SourceName = cut[0].SourceName
		run.OriginalLine = cut[0].OriginalLine
		run.OriginalColumn = cut[0].OriginalColumn
		run.Name = r.Name
	}
	return []Run{run}
}

func runsLen(runs []Run) int {
	n := 0
	for _, r := range runs {
		n += len(r.Text)
	}
	return n
}

// clampRange converts the inclusive [start, end] range into clamped
// [start, end+1) byte offsets within a text of length n.
func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	stop := end + 1
	if stop < start {
		stop = start
	}
	if stop > n {
		stop = n
	}
	return start, stop
}
