package utils_test

import (
	"strings"
	"testing"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "hi", 1},
		{"simple", "hello world", 2},
		{"runes", "ğüşöçı€✓", 2},
		{"long", strings.Repeat("a", 4000), 1000},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	text := strings.Repeat("abcd ", 1000)
	trunc := utils.TruncateToTokenLimit(text, 300)
	if n := utils.CountTokens(trunc); n > 300 {
		t.Fatalf("tokens=%d exceeds limit", n)
	}
	if len(trunc) != 1200 {
		t.Fatalf("expected hard cut at 1200 chars, got %d", len(trunc))
	}
	if got := utils.TruncateToTokenLimit("short", 10); got != "short" {
		t.Fatalf("short text changed: %q", got)
	}
	if got := utils.TruncateToTokenLimit("anything", 0); got != "" {
		t.Fatalf("zero limit should yield empty, got %q", got)
	}
}

func TestTruncateKeepsWholeLines(t *testing.T) {
	text := "- Revenue Total: 600\n- Revenue Average: 200.00\n- Record Count: 3\n"
	got := utils.TruncateToTokenLimit(text, 10)
	if got != "- Revenue Total: 600" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
