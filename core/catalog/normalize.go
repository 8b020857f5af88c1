package catalog

import (
	"strings"
	"unicode"
)

// titleSeparators split a page title into product name and decoration.
var titleSeparators = []string{" - ", " | ", " :: ", " — ", " – ", " · "}

// trailingQualifiers are dropped from the end of a name before folding.
var trailingQualifiers = []string{"login", "log in", "sign in", "signin", "dashboard", "web ui", "webui", "home", "admin"}

// Normalize folds a page title or product name into a catalog key:
// lowercase, decoration after the first separator removed, trailing
// qualifiers stripped and only letters and digits kept.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range titleSeparators {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
		}
	}

	for stripped := true; stripped; {
		stripped = false
		s = strings.TrimSpace(s)
		for _, q := range trailingQualifiers {
			if strings.HasSuffix(s, " "+q) {
				s = strings.TrimSuffix(s, " "+q)
				stripped = true
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func exactKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
