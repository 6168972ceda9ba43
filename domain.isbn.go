package main

import "strings"

// NormalizeISBN converts an ISBN-10 into its ISBN-13 form. Every character
// other than digits and X/x is dropped first. Inputs which do not end up
// with exactly 10 characters are returned cleaned but otherwise unchanged,
// so nothing here ever fails.
func NormalizeISBN(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			return r
		}
		return -1
	}, input)

	if len(cleaned) != 10 {
		return cleaned
	}

	core := "978" + cleaned[:9]
	sum := 0
	for i := 0; i < len(core); i++ {
		d := 0
		if c := core[i]; c >= '0' && c <= '9' {
			d = int(c - '0')
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	check := (10 - sum%10) % 10
	return core + string(rune('0'+check))
}
