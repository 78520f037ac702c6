package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName lower-cases and trims a display name for comparison.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// NamesSimilar is true when the normalized names are equal or one contains the other.
// Deliberately loose: "Al" is similar to "Albert".
func NamesSimilar(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return true
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Initials takes the first two characters of a single-word name, or the first
// character of the first and last words otherwise. Blank input yields "".
func Initials(name string) string {
	words := strings.Fields(name)
	var out string
	switch len(words) {
	case 0:
		return ""
	case 1:
		r := []rune(words[0])
		if len(r) > 2 {
			r = r[:2]
		}
		out = string(r)
	default:
		first := []rune(words[0])
		last := []rune(words[len(words)-1])
		out = string(first[0]) + string(last[0])
	}
	return cases.Upper(language.Und).String(out)
}
