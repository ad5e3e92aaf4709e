// Package strings provides string helpers shared by repos and CLIs
package strings

import std "strings"

// SQLNull returns nil if s is blank/whitespace, else the original string
// Useful for query args where NULL is desired for blanks
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// FirstLine returns the first line of s, marking cut text with an ellipsis
func FirstLine(s string) string {
	if i := std.IndexByte(s, '\n'); i >= 0 {
		return std.TrimRight(s[:i], "\r") + " ..."
	}
	return s
}
