package fragment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeTable(t *testing.T) {
	content := "line one\nline two\n"
	tests := []struct {
		name string
		a, b Fragment
		want Fragment // nil means not mergeable
	}{
		{
			name: "code absorbs code",
			a:    &Code{Text: "foo"},
			b:    &Code{Text: "bar"},
			want: &Code{Text: "foobar"},
		},
		{
			name: "code never merges with mapped",
			a:    &Code{Text: "foo"},
			b:    &Line{Text: "bar", SourceName: "a.js", OriginalLine: 1},
			want: nil,
		},
		{
			name: "same original line concatenates",
			a:    &Line{Text: "foo", SourceName: "a.js", OriginalLine: 1},
			b:    &Line{Text: "bar", SourceName: "a.js", OriginalLine: 1},
			want: &Line{Text: "foobar", SourceName: "a.js", OriginalLine: 1},
		},
		{
			name: "consecutive lines promote to a block",
			a:    &Line{Text: "foo\n", SourceName: "a.js", OriginalLine: 1},
			b:    &Line{Text: "bar", SourceName: "a.js", OriginalLine: 2},
			want: &Block{Text: "foo\nbar", SourceName: "a.js", StartLine: 1},
		},
		{
			name: "consecutive lines without newline stay apart",
			a:    &Line{Text: "foo", SourceName: "a.js", OriginalLine: 1},
			b:    &Line{Text: "bar", SourceName: "a.js", OriginalLine: 2},
			want: nil,
		},
		{
			name: "different sources stay apart",
			a:    &Line{Text: "foo\n", SourceName: "a.js", OriginalLine: 1},
			b:    &Line{Text: "bar", SourceName: "b.js", OriginalLine: 2},
			want: nil,
		},
		{
			name: "different original content stays apart",
			a:    &Line{Text: "foo\n", SourceName: "a.js", OriginalSource: &content, OriginalLine: 1},
			b:    &Line{Text: "bar", SourceName: "a.js", OriginalLine: 2},
			want: nil,
		},
		{
			name: "block absorbs a trailing line",
			a:    &Block{Text: "foo\nbar\n", SourceName: "a.js", StartLine: 1},
			b:    &Line{Text: "baz", SourceName: "a.js", OriginalLine: 3},
			want: &Block{Text: "foo\nbar\nbaz", SourceName: "a.js", StartLine: 1},
		},
		{
			name: "block rejects a non-contiguous line",
			a:    &Block{Text: "foo\nbar\n", SourceName: "a.js", StartLine: 1},
			b:    &Line{Text: "baz", SourceName: "a.js", OriginalLine: 5},
			want: nil,
		},
		{
			name: "block rejects a line when it is unfinished",
			a:    &Block{Text: "foo\nbar", SourceName: "a.js", StartLine: 1},
			b:    &Line{Text: "baz", SourceName: "a.js", OriginalLine: 2},
			want: nil,
		},
		{
			name: "block absorbs a contiguous block",
			a:    &Block{Text: "foo\n", SourceName: "a.js", StartLine: 1},
			b:    &Block{Text: "bar\nbaz\n", SourceName: "a.js", StartLine: 2},
			want: &Block{Text: "foo\nbar\nbaz\n", SourceName: "a.js", StartLine: 1},
		},
		{
			name: "mapped never merges with code",
			a:    &Line{Text: "foo", SourceName: "a.js", OriginalLine: 1},
			b:    &Code{Text: "bar"},
			want: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := test.a.Merge(test.b)
			if test.want == nil {
				if ok {
					t.Fatalf("Merge() = %#v, want not mergeable", got)
				}
				return
			}
			if !ok {
				t.Fatal("Merge() not mergeable, want a merged fragment")
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Merged fragment differs (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeBlock(t *testing.T) {
	b := &Block{Text: "one\ntwo\nthr", SourceName: "a.js", StartLine: 4}
	want := []Fragment{
		&Line{Text: "one\n", SourceName: "a.js", OriginalLine: 4},
		&Line{Text: "two\n", SourceName: "a.js", OriginalLine: 5},
		&Line{Text: "thr", SourceName: "a.js", OriginalLine: 6},
	}
	if diff := cmp.Diff(want, b.Normalize()); diff != "" {
		t.Errorf("Normalize() differs (-want,+got):\n%s", diff)
	}
}

func TestEmitMappingsCarry(t *testing.T) {
	// A plain fragment leaving a line unfinished forces the next mapped
	// fragment to open with a comma and the carried column.
	ctx := NewContext()
	code := &Code{Text: "ab"}
	line := &Line{Text: "cd", SourceName: "a.js", OriginalLine: 1}
	if got := code.EmitMappings(ctx); got != "" {
		t.Errorf("Code.EmitMappings() = %q, want empty", got)
	}
	if got := line.EmitMappings(ctx); got != ",EAAA" {
		t.Errorf("Line.EmitMappings() = %q, want %q", got, ",EAAA")
	}
}

func TestEmitMappingsBlock(t *testing.T) {
	ctx := NewContext()
	b := &Block{Text: "a\nb\nc\n", SourceName: "a.js", StartLine: 1}
	if got := b.EmitMappings(ctx); got != "AAAA;AACA;AACA;" {
		t.Errorf("Block.EmitMappings() = %q, want %q", got, "AAAA;AACA;AACA;")
	}
	if ctx.CurrentOriginalLine != 3 {
		t.Errorf("CurrentOriginalLine = %d, want 3", ctx.CurrentOriginalLine)
	}
	if ctx.UnfinishedColumn != 0 {
		t.Errorf("UnfinishedColumn = %d, want 0", ctx.UnfinishedColumn)
	}
}
