package handlers

import "testing"

func TestExtractAnswer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		text   string
		marker string
		want   string
		ok     bool
	}{
		{"plain answer", "- paris", "-", "paris", true},
		{"no space after marker", "-paris", "-", "paris", true},
		{"extra whitespace", "-   paris  ", "-", "paris", true},
		{"marker only", "-", "-", "", true},
		{"marker with spaces only", "-   ", "-", "", true},
		{"not an answer", "paris", "-", "", false},
		{"marker mid-message", "my answer - paris", "-", "", false},
		{"different marker", "! paris", "-", "", false},
		{"multichar marker", ">> 8", ">>", "8", true},
		{"empty marker never matches", "- paris", "", "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractAnswer(tc.text, tc.marker)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractAnswer(%q, %q) = %q, %v; want %q, %v", tc.text, tc.marker, got, ok, tc.want, tc.ok)
			}
		})
	}
}
