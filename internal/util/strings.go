package util

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FirstNonEmpty returns the first non-empty string (after trimming).
func FirstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Normalize unescapes HTML entities, applies NFKC and collapses runs of
// whitespace. Scraped page text and provider strings pass through here
// before comparison or storage.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

var foldT = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips diacritics, so "Saint-Exupéry" matches
// "saint-exupery".
func Fold(s string) string {
	out, _, err := transform.String(foldT, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// SecureURL keeps http(s) URLs only and upgrades the scheme to https.
func SecureURL(u string) string {
	u = strings.TrimSpace(u)
	l := strings.ToLower(u)
	if !strings.HasPrefix(l, "http://") && !strings.HasPrefix(l, "https://") {
		return ""
	}
	if rest := u[strings.Index(u, "://")+3:]; rest == "" {
		return ""
	}
	return strings.Replace(u, "http://", "https://", 1)
}
