package fragment

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neelance/sourcemap"

	"github.com/cranefold/sourcefrag/srcmap"
)

func TestToSourceAndMapScenario(t *testing.T) {
	l := NewList()
	l.AppendMapped("const a = 1;\n", "input.js", nil, 1)
	l.AppendMapped("const b = 2;", "input.js", nil, 2)

	src, m := l.ToSourceAndMap(nil)
	if want := "const a = 1;\nconst b = 2;"; src != want {
		t.Errorf("source = %q, want %q", src, want)
	}
	if m.Mappings != "AAAA;AACA" {
		t.Errorf("mappings = %q, want %q", m.Mappings, "AAAA;AACA")
	}
	if diff := cmp.Diff([]string{"input.js"}, m.Sources); diff != "" {
		t.Errorf("sources differ (-want,+got):\n%s", diff)
	}
	if m.SourcesContent != nil {
		t.Errorf("sourcesContent = %v, want absent", m.SourcesContent)
	}
}

func TestToSourceAndMapContent(t *testing.T) {
	content := "const a = 1;\n"
	l := NewList()
	l.AppendMapped("const a = 1;\n", "input.js", &content, 1)
	_, m := l.ToSourceAndMap(&Options{File: "out.js"})
	if m.File != "out.js" {
		t.Errorf("file = %q, want %q", m.File, "out.js")
	}
	if len(m.SourcesContent) != 1 || m.SourcesContent[0] == nil || *m.SourcesContent[0] != content {
		t.Errorf("sourcesContent = %v, want [%q]", m.SourcesContent, content)
	}
}

func TestAppendMergesTail(t *testing.T) {
	l := NewList()
	l.AppendString("a")
	l.AppendString("b")
	l.AppendMapped("c\n", "x.js", nil, 1)
	l.AppendMapped("d\n", "x.js", nil, 2)
	want := []Fragment{
		&Code{Text: "ab"},
		&Block{Text: "c\nd\n", SourceName: "x.js", StartLine: 1},
	}
	if diff := cmp.Diff(want, l.Fragments()); diff != "" {
		t.Errorf("fragments differ (-want,+got):\n%s", diff)
	}
}

func TestPrepend(t *testing.T) {
	l := NewList()
	l.AppendString("world")
	l.PrependString("hello ")
	if got := l.String(); got != "hello world" {
		t.Errorf("String() = %q, want %q", got, "hello world")
	}
	if n := len(l.Fragments()); n != 1 {
		t.Errorf("fragment count = %d, want 1 after head merge", n)
	}
}

func TestMergeTransparency(t *testing.T) {
	// Whatever the segment granularity, the serialized text and the
	// resolved position table must not change.
	a := &Line{Text: "foo", SourceName: "a.js", OriginalLine: 1}
	b := &Line{Text: "bar", SourceName: "a.js", OriginalLine: 1}

	merged, ok := a.Merge(b)
	if !ok {
		t.Fatal("Merge() not mergeable, want merged")
	}
	coarse, coarseMap := NewList(merged).ToSourceAndMap(nil)

	ctxA := NewContext()
	fineMappings := a.EmitMappings(ctxA) + b.EmitMappings(ctxA)
	fine := a.GeneratedText() + b.GeneratedText()

	if coarse != fine {
		t.Fatalf("serialized text differs: %q vs %q", coarse, fine)
	}
	fineMap := &srcmap.Map{Version: 3, Sources: ctxA.Sources(), Mappings: fineMappings}
	for col := 0; col < len(fine); col++ {
		got := resolve(t, coarseMap, 1, col)
		want := resolve(t, fineMap, 1, col)
		if got != want {
			t.Errorf("column %d resolves to %v merged vs %v unmerged", col, got, want)
		}
	}
}

type resolved struct {
	Source string
	Line   int
	Column int
}

// resolve returns the original position the map attributes to a generated
// position, using the nearest preceding segment on the line, the way
// source map consumers do.
func resolve(t *testing.T, m *srcmap.Map, line, col int) resolved {
	t.Helper()
	decoded, err := m.DecodedMappings()
	if err != nil {
		t.Fatalf("DecodedMappings() returned error: %v", err)
	}
	var best *srcmap.Mapping
	for i := range decoded {
		mp := decoded[i]
		if mp.GeneratedLine == line && mp.GeneratedColumn <= col && mp.HasSource {
			if best == nil || mp.GeneratedColumn > best.GeneratedColumn {
				best = &decoded[i]
			}
		}
	}
	if best == nil {
		return resolved{}
	}
	return resolved{Source: m.Sources[best.SourceIndex], Line: best.OriginalLine, Column: best.OriginalColumn}
}

func TestRoundTrip(t *testing.T) {
	text := "const a = 1;\nconst b = 2;"
	m := &srcmap.Map{
		Version:  3,
		Sources:  []string{"input.js"},
		Mappings: "AAAA;AACA",
	}
	l, err := FromSourceAndMap(text, m)
	if err != nil {
		t.Fatalf("FromSourceAndMap() returned error: %v", err)
	}
	if got := l.String(); got != text {
		t.Errorf("serialized text = %q, want %q", got, text)
	}
	src, got := l.ToSourceAndMap(nil)
	if src != text {
		t.Errorf("re-serialized text = %q, want %q", src, text)
	}
	if got.Mappings != m.Mappings {
		t.Errorf("re-serialized mappings = %q, want %q", got.Mappings, m.Mappings)
	}
	if diff := cmp.Diff(m.Sources, got.Sources); diff != "" {
		t.Errorf("sources differ (-want,+got):\n%s", diff)
	}
}

func TestParsePartialLines(t *testing.T) {
	// Unmapped pieces around a mapped run become plain fragments and the
	// trailing lines beyond the map become one unmapped block.
	text := "xxfoo\nbar\nbaz\n"
	m := &srcmap.Map{
		Version:  3,
		Sources:  []string{"a.js"},
		Mappings: "EAAA", // column 2 of line 1 maps to a.js:1
	}
	l, err := FromSourceAndMap(text, m)
	if err != nil {
		t.Fatalf("FromSourceAndMap() returned error: %v", err)
	}
	want := []Fragment{
		&Code{Text: "xx"},
		&Line{Text: "foo\n", SourceName: "a.js", OriginalLine: 1},
		&Code{Text: "bar\nbaz\n"},
	}
	if diff := cmp.Diff(want, l.Fragments()); diff != "" {
		t.Errorf("fragments differ (-want,+got):\n%s", diff)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	m := &srcmap.Map{Version: 3, Mappings: "AAAA"}
	if _, err := FromSourceAndMap("x", m); err == nil {
		t.Error("FromSourceAndMap() succeeded with out-of-bounds source index")
	}
}

func TestIdempotentReserialization(t *testing.T) {
	// Parse and re-serialize twice: with one fragment per line there is
	// no merge ambiguity and the mappings must be byte-identical.
	text := "one\ntwo\nthree"
	l := NewList()
	l.AppendMapped(text, "in.js", nil, 1)
	src, m := l.ToSourceAndMap(nil)

	l2, err := FromSourceAndMap(src, m)
	if err != nil {
		t.Fatalf("FromSourceAndMap() returned error: %v", err)
	}
	src2, m2 := l2.ToSourceAndMap(nil)
	if src2 != src {
		t.Errorf("text changed across round trip: %q vs %q", src2, src)
	}
	if m2.Mappings != m.Mappings {
		t.Errorf("mappings changed across round trip: %q vs %q", m2.Mappings, m.Mappings)
	}
}

func TestMapGeneratedText(t *testing.T) {
	l := NewList()
	l.AppendMapped("a\nb\n", "x.js", nil, 1)
	got := l.MapGeneratedText(func(line string) string { return "\t" + line })
	want := []Fragment{
		&Block{Text: "\ta\n\tb\n", SourceName: "x.js", StartLine: 1},
	}
	if diff := cmp.Diff(want, got.Fragments()); diff != "" {
		t.Errorf("fragments differ (-want,+got):\n%s", diff)
	}
	src, m := got.ToSourceAndMap(nil)
	if src != "\ta\n\tb\n" {
		t.Errorf("serialized text = %q, want %q", src, "\ta\n\tb\n")
	}
	if m.Mappings != "AAAA;AACA;" {
		t.Errorf("mappings = %q, want %q", m.Mappings, "AAAA;AACA;")
	}
}

func TestMapGeneratedTextPartialLineUnits(t *testing.T) {
	// A fragment boundary inside a generated line yields one unit per
	// fragment, in order, and fn's edits land on the right unit.
	l := NewList(
		&Code{Text: "x"},
		&Line{Text: "foo\n", SourceName: "a.js", OriginalLine: 1},
	)
	var units []string
	got := l.MapGeneratedText(func(unit string) string {
		units = append(units, unit)
		return unit
	})
	if diff := cmp.Diff([]string{"x", "foo\n"}, units); diff != "" {
		t.Errorf("units differ (-want,+got):\n%s", diff)
	}
	if got.String() != "xfoo\n" {
		t.Errorf("String() = %q, want %q", got.String(), "xfoo\n")
	}
}

func TestToSourceAndMapWithoutMappedFragments(t *testing.T) {
	l := NewList()
	l.AppendString("plain\n")
	_, m := l.ToSourceAndMap(nil)
	if m.Sources == nil {
		t.Fatal("Sources is nil, want an empty array")
	}
	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"sources":[]`) {
		t.Errorf("wire form %q lacks an empty sources array", buf.String())
	}
}

func TestAgainstIndependentDecoder(t *testing.T) {
	// Cross-check the encoder against the neelance/sourcemap decoder.
	l := NewList()
	l.AppendString("// banner\n")
	l.AppendMapped("one\ntwo\n", "in.js", nil, 1)
	_, m := l.ToSourceAndMap(nil)

	nm := &sourcemap.Map{Version: 3, Sources: m.Sources, Mappings: m.Mappings}
	decoded := nm.DecodedMappings()
	want := []*sourcemap.Mapping{
		{GeneratedLine: 2, GeneratedColumn: 0, OriginalFile: "in.js", OriginalLine: 1, OriginalColumn: 0},
		{GeneratedLine: 3, GeneratedColumn: 0, OriginalFile: "in.js", OriginalLine: 2, OriginalColumn: 0},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("decoded mappings differ (-want,+got):\n%s", diff)
	}
}
