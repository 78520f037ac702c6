// Package textutil holds the string normalization shared by matching and display.
package textutil

import "strings"

// NormalizePhone strips every character that is not an ASCII digit.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for i := 0; i < len(phone); i++ {
		if c := phone[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PhonesMatch reports whether two numbers carry the same non-empty digit sequence.
func PhonesMatch(a, b string) bool {
	na := NormalizePhone(a)
	return na != "" && na == NormalizePhone(b)
}

// FormatPhone renders 10 and 11 digit numbers in North American style.
// Any other length is returned unchanged.
func FormatPhone(phone string) string {
	d := NormalizePhone(phone)
	switch len(d) {
	case 10:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case 11:
		return "+" + d[:1] + " (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	}
	return phone
}
