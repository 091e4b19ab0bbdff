package scan

import (
	"testing"
	"unicode/utf8"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$1,250,000", 1250000, true},
		{"250000.50", 250000.50, true},
		{"500000-1000000", 500000, true},
		{"$0", 0, false},
		{"", 0, false},
		{"TBD", 0, false},
		{"-500", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseMoney(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseMoney(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("  ", "fallback"); got != "fallback" {
		t.Errorf("whitespace-only value must default, got %q", got)
	}
	if got := orDefault(" Robotic  Cell ", "fallback"); got != "Robotic Cell" {
		t.Errorf("expected cleaned value, got %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>Robotic   <b>welding</b></p><br>cell")
	if got != "Robotic welding cell" {
		t.Errorf("unexpected text extraction: %q", got)
	}
}

func TestHTMLToText_AdjacentBlocksDoNotFuse(t *testing.T) {
	// Words from neighboring elements must stay separate words, or keyword
	// matching sees tokens that never existed in the source.
	got := HTMLToText("<p>robotic</p><p>welding</p><div>cell</div>")
	if got != "robotic welding cell" {
		t.Errorf("block boundaries must separate words, got %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 80); got != "short" {
		t.Errorf("short input must pass through, got %q", got)
	}
	got := TruncateText("abcdefghij", 8)
	if got != "abcde..." {
		t.Errorf("expected truncation with ellipsis, got %q", got)
	}
}

func TestTruncateText_MultibyteStaysValid(t *testing.T) {
	got := TruncateText("caféteria — procurement", 8)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if got != "cafét..." {
		t.Errorf("expected rune-boundary cut, got %q", got)
	}
}

func TestShortHash_StableLength(t *testing.T) {
	a := shortHash("title", "2026-08-01")
	b := shortHash("title", "2026-08-01")
	if a != b {
		t.Fatal("hash must be stable for identical inputs")
	}
	if len(a) != 16 {
		t.Fatalf("expected 16-char fragment, got %d", len(a))
	}
	if shortHash("other", "2026-08-01") == a {
		t.Fatal("distinct inputs must not collide on these fixtures")
	}
}
