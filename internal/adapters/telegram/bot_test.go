package telegram

import "testing"

func TestFormatSessionList(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		active string
		want   string
	}{
		{
			name:   "active wrapped in markers",
			names:  []string{"default", "work", "home"},
			active: "work",
			want:   "default\n*work*\nhome",
		},
		{
			name:   "single session",
			names:  []string{"1700000000"},
			active: "1700000000",
			want:   "*1700000000*",
		},
		{
			name:   "active first",
			names:  []string{"a", "b"},
			active: "a",
			want:   "*a*\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSessionList(tt.names, tt.active); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
