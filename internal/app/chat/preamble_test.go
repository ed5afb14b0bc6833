package chat

import (
	"strings"
	"testing"
)

func TestBuildPreambleEmpty(t *testing.T) {
	if got := buildPreamble(nil); got != "" {
		t.Fatalf("expected empty preamble, got %q", got)
	}
	if got := buildPreamble(map[string]float64{}); got != "" {
		t.Fatalf("expected empty preamble, got %q", got)
	}
}

func TestBuildPreambleFormatting(t *testing.T) {
	got := buildPreamble(map[string]float64{"EUR": 0.92, "JPY": 149.5})
	if got != "EUR: 0.92\nJPY: 149.5" {
		t.Fatalf("unexpected preamble: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short input untouched", in: "hello", max: 10, want: "hello"},
		{name: "exact length untouched", in: "hello", max: 5, want: "hello"},
		{name: "clipped", in: "hello", max: 3, want: "hel"},
		{name: "multibyte clipped by runes", in: strings.Repeat("é", 4), max: 2, want: "éé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
