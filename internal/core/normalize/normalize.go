// Package normalize cleans free text (attention reasons, change messages,
// comment bodies) before it is validated or persisted
//
// Reason pipeline
// 1 strip control bytes and invalid UTF-8 (Sanitize)
// 2 Unicode NFKC normalization
// 3 remove format characters (ZWSP, ZWJ, BOM, bidi marks)
// 4 collapse every whitespace run to one space and trim
//
// Text keeps line structure: NFC only, format characters removed,
// trailing spaces dropped per line, outer blank lines trimmed
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reasonChains = sync.Pool{
		New: func() any {
			return transform.Chain(
				norm.NFKC,
				runes.Remove(runes.In(unicode.Cf)),
			)
		},
	}
	textChains = sync.Pool{
		New: func() any {
			return transform.Chain(
				norm.NFC,
				runes.Remove(runes.In(unicode.Cf)),
			)
		},
	}
)

func apply(pool *sync.Pool, s string) string {
	tr := pool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	pool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Reason returns the canonical single-line form of an attention reason
// An empty result means the reason is absent
func Reason(s string) string {
	if s == "" {
		return ""
	}
	s = apply(&reasonChains, Sanitize(s))
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// IsBlank reports whether s carries no content once normalized
func IsBlank(s string) bool { return Reason(s) == "" }

// Text returns a cleaned multi-line body for messages and comments
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = apply(&textChains, Sanitize(s))
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRightFunc(ln, unicode.IsSpace)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
