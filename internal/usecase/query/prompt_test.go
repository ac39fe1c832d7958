package query

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSnippet_ShortTextUnchanged(t *testing.T) {
	if got := snippet("short text", 200); got != "short text" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippet_CutsAtWordBoundary(t *testing.T) {
	got := snippet("alpha beta gamma delta", 12)
	if got != "alpha beta..." {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippet_SpacelessTextStaysValidUTF8(t *testing.T) {
	text := strings.Repeat("é", 50) // 2 bytes per rune, no spaces
	for max := 10; max <= 13; max++ {
		got := snippet(text, max)
		if !utf8.ValidString(got) {
			t.Errorf("max=%d: snippet produced invalid UTF-8: %q", max, got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("max=%d: expected truncation marker, got %q", max, got)
		}
	}
}
