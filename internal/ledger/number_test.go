package ledger

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"plain integer", "250", f(250)},
		{"decimal", "12.5", f(12.5)},
		{"unit suffix", "610 kcal", f(610)},
		{"gram suffix", "12.5g", f(12.5)},
		{"negative", "-3", f(-3)},
		{"thousands separator", "1,250", f(1250)},
		{"empty", "", nil},
		{"letters only", "abc", nil},
		{"stray punctuation", "-.", nil},
		{"multiple dots", "1.2.3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseNumber(%q) = %v, want nil", tt.in, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseNumber(%q) = nil, want %v", tt.in, *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func f(v float64) *float64 {
	return &v
}
