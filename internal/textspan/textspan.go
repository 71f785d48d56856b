// Package textspan provides the line and column arithmetic shared by the
// fragment and span encoders.
package textspan

import "strings"

// CountLines returns the number of newline characters in s. A fragment with
// no newline has zero lines by this definition.
func CountLines(s string) int {
	return strings.Count(s, "\n")
}

// TrailingColumn returns the number of characters after the last newline in
// s, or len(s) when s contains no newline.
func TrailingColumn(s string) int {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return len(s) - i - 1
	}
	return len(s)
}

// Advance walks s and returns the generated line/column cursor after it.
// line is 1-based, col is 0-based.
func Advance(line, col int, s string) (int, int) {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			return line, col + len(s)
		}
		line++
		col = 0
		s = s[i+1:]
	}
}
