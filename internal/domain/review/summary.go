package review

import (
	"strings"
	"unicode"
)

// firstName extracts the reviewee's first name from their full name: the
// second whitespace-separated token when present (skipping honorifics like
// "Dr."), otherwise the first.
func firstName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[1]
	}
}

// personalizeSummary prefixes the reviewee's first name when the summary does
// not already mention it (case-insensitively), lower-casing the first rune of
// the original summary so the sentence still reads naturally.
func personalizeSummary(summary, revieweeFullName string) string {
	name := firstName(revieweeFullName)
	if name == "" || summary == "" {
		return summary
	}
	if strings.Contains(strings.ToLower(summary), strings.ToLower(name)) {
		return summary
	}

	runes := []rune(summary)
	runes[0] = unicode.ToLower(runes[0])
	return name + " " + string(runes)
}
