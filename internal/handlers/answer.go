package handlers

import (
	"strings"
)

// ExtractAnswer recognizes answer submissions: messages that begin with
// the marker. The returned answer has the marker stripped and the
// surrounding whitespace trimmed; an empty answer after the marker is a
// usage error handled by the caller, not an arbitration outcome.
func ExtractAnswer(text, marker string) (string, bool) {
	if marker == "" || !strings.HasPrefix(text, marker) {
		return "", false
	}
	return strings.TrimSpace(text[len(marker):]), true
}
