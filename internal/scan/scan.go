// Package scan glues pluggable barcode and OCR backends to the
// identifier pipeline. Both backends are optional; the HTTP layer
// reports the routes unavailable when they are absent.
package scan

import (
	"context"
	"regexp"
	"strings"

	"github.com/kajdahl/booklog/internal/isbn"
	"github.com/kajdahl/booklog/internal/util"
)

// BarcodeDecoder extracts raw barcode payloads from an image.
type BarcodeDecoder interface {
	Decode(ctx context.Context, image []byte) ([]string, error)
}

// OCREngine extracts text lines from an image.
type OCREngine interface {
	Text(ctx context.Context, image []byte) (string, error)
}

// ISBNFromImage decodes the image and runs every payload through ISBN
// extraction. A back cover often carries two barcodes (the ISBN plus a
// price add-on EAN), so Bookland-prefixed results win over other EANs
// regardless of decode order.
func ISBNFromImage(ctx context.Context, dec BarcodeDecoder, image []byte) string {
	if dec == nil {
		return ""
	}
	payloads, err := dec.Decode(ctx, image)
	if err != nil {
		return ""
	}
	var fallback string
	for _, p := range payloads {
		c := isbn.ExtractFromText(p)
		if c == "" {
			continue
		}
		if strings.HasPrefix(c, "978") || strings.HasPrefix(c, "979") {
			return c
		}
		if fallback == "" {
			fallback = c
		}
	}
	return fallback
}

var byLineRe = regexp.MustCompile(`(?i)^(?:by|af)\s+(.{2,60})$`)

// GuessTitleAuthor inspects OCR output from a cover photo. The longest
// line with few digits is taken as the title; the author is a "by X"
// line or, failing that, a short two-to-four word name line that is
// not the title.
func GuessTitleAuthor(text string) (title, author string) {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = util.Normalize(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}

	for _, ln := range lines {
		if digitRatio(ln) > 0.3 {
			continue
		}
		if len(ln) > len(title) {
			title = ln
		}
	}

	for _, ln := range lines {
		if m := byLineRe.FindStringSubmatch(ln); m != nil {
			author = strings.TrimSpace(m[1])
			return title, author
		}
	}
	for _, ln := range lines {
		if ln == title || digitRatio(ln) > 0 {
			continue
		}
		words := strings.Fields(ln)
		if len(words) >= 2 && len(words) <= 4 && len(ln) <= 40 && looksLikeName(words) {
			author = ln
			break
		}
	}
	return title, author
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len([]rune(s)))
}

// looksLikeName wants every word capitalized or an initial, the shape
// of a printed author credit.
func looksLikeName(words []string) bool {
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			return false
		}
		first := r[0]
		if !(first >= 'A' && first <= 'Z') && !(first >= 'À' && first <= 'Þ') {
			return false
		}
	}
	return true
}
