// Package isbn validates and converts ISBN identifiers. ISBN-13 is
// EAN-13 with a public checksum, so everything here is offline; callers
// validate before spending a network call on an impossible identifier.
package isbn

import (
	"regexp"
	"strings"
)

var (
	nonISBN   = regexp.MustCompile(`[^0-9X]`)
	thirteen  = regexp.MustCompile(`\d{13}`)
	digitRun  = regexp.MustCompile(`\d{13,}`)
	separator = regexp.MustCompile(`[-\x{2013}\s]`)
	yearRe    = regexp.MustCompile(`(19|20)\d{2}`)
	isbn10Ptn = regexp.MustCompile(`^\d{9}[\dX]$`)
)

// Clean strips every character except digits and uppercase X.
func Clean(s string) string {
	return nonISBN.ReplaceAllString(strings.ToUpper(s), "")
}

// ValidISBN13 reports whether s is exactly 13 digits with a correct
// check digit (alternating weights 1,3 over the first 12, mod 10).
func ValidISBN13(s string) bool {
	if len(s) != 13 || !allDigits(s) {
		return false
	}
	total := 0
	for i := 0; i < 12; i++ {
		d := int(s[i] - '0')
		if i%2 == 0 {
			total += d
		} else {
			total += 3 * d
		}
	}
	check := (10 - total%10) % 10
	return check == int(s[12]-'0')
}

// ValidISBN10 reports whether s is a 10-character ISBN-10: nine digits
// plus a check character (digit or X), weighted 1..9 mod 11.
func ValidISBN10(s string) bool {
	if !isbn10Ptn.MatchString(s) {
		return false
	}
	total := 0
	for i := 0; i < 9; i++ {
		total += (i + 1) * int(s[i]-'0')
	}
	check := total % 11
	if s[9] == 'X' {
		return check == 10
	}
	return check == int(s[9]-'0')
}

// ToISBN10 converts a valid 978-prefixed ISBN-13 to its ISBN-10 form.
// Returns "" for anything else; 979-prefixed codes have no ISBN-10.
func ToISBN10(isbn13 string) string {
	if !strings.HasPrefix(isbn13, "978") || !ValidISBN13(isbn13) {
		return ""
	}
	core := isbn13[3:12]
	total := 0
	for i := 0; i < 9; i++ {
		total += (i + 1) * int(core[i]-'0')
	}
	rem := total % 11
	if rem == 10 {
		return core + "X"
	}
	return core + string(rune('0'+rem))
}

// ExtractFromText finds the first checksum-valid 13-digit run in free
// text, preferring 978/979-prefixed candidates. Tolerates noisy OCR and
// barcode payloads such as an EAN with a trailing price add-on code.
func ExtractFromText(s string) string {
	if s == "" {
		return ""
	}
	candidates := thirteen.FindAllString(s, -1)
	// Printed ISBNs carry hyphens, and barcode payloads may glue a
	// price add-on code onto the EAN. Collapse separators and window
	// over the resulting digit runs to recover those too.
	collapsed := separator.ReplaceAllString(s, "")
	for _, run := range digitRun.FindAllString(collapsed, -1) {
		for i := 0; i+13 <= len(run); i++ {
			candidates = append(candidates, run[i:i+13])
		}
	}
	for _, c := range candidates {
		if bookland(c) && ValidISBN13(c) {
			return c
		}
	}
	for _, c := range candidates {
		if !bookland(c) && ValidISBN13(c) {
			return c
		}
	}
	return ""
}

func bookland(c string) bool {
	return strings.HasPrefix(c, "978") || strings.HasPrefix(c, "979")
}

// Year pulls a plausible publication year out of a free-text date.
func Year(pubdate string) string {
	return yearRe.FindString(pubdate)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
