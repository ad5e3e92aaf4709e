package normalize

import (
	"testing"
)

func TestReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"identity", "removed on reply", "removed on reply"},
		{"outer whitespace trimmed", "  \t manual \n", "manual"},
		{"inner runs collapsed", "Someone  else\n\treplied", "Someone else replied"},
		{"only whitespace is empty", " \t\r\n ", ""},
		{"zero widths only is empty", "\u200b\u200d\ufeff", ""},
		{"zero width inside word removed", "re\u200bview", "review"},
		{"nfkc ligature", "o\ufb03ce hours", "office hours"},
		{"fullwidth folds under nfkc", "\uff23\uff29 bot", "CI bot"},
		{"controls dropped", "a\x00b\x7fc", "abc"},
		{"invalid utf8 dropped", string([]byte{0xff, 'o', 'k'}), "ok"},
		{"nbsp counts as space", "\u00a0x\u00a0", "x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.in); got != tt.out {
				t.Fatalf("Reason(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	if !IsBlank("   ") || !IsBlank("") || !IsBlank("\u200b") {
		t.Fatalf("whitespace and zero width should be blank")
	}
	if IsBlank(" x ") {
		t.Fatalf("content should not be blank")
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"keeps lines", "Patch Set 2:\n\nDone", "Patch Set 2:\n\nDone"},
		{"crlf folded", "a\r\nb", "a\nb"},
		{"trailing spaces per line", "a  \nb\t", "a\nb"},
		{"outer blank lines trimmed", "\n\nbody\n\n", "body"},
		{"format chars removed", "LG\u200bTM", "LGTM"},
		{"nfc composes", "café", "café"},
		{"keeps inner indentation", "  code\n    more", "  code\n    more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.out {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	clean := "plain\ttext\nwith ünïcode"
	if got := Sanitize(clean); got != clean {
		t.Fatalf("clean input changed: %q", got)
	}
	if got := Sanitize("a\x01b\u0085c\x7f"); got != "abc" {
		t.Fatalf("Sanitize = %q", got)
	}
	if got := Sanitize(string([]byte{'x', 0xc3})); got != "x" {
		t.Fatalf("truncated rune not dropped: %q", got)
	}
}

func BenchmarkReason(b *testing.B) {
	in := "  Someone else replied on a comment you posted \u200b "
	for i := 0; i < b.N; i++ {
		_ = Reason(in)
	}
}
