// Package query decides a search strategy for a raw free-text query.
// The bibliographic API ranks results very differently depending on the
// query shape, so we generate an ordered list of progressively less
// specific attempts and stop at the first one that returns anything.
package query

import (
	"regexp"
	"strings"

	"github.com/kajdahl/booklog/internal/isbn"
	"github.com/kajdahl/booklog/internal/util"
)

type Kind int

const (
	KindGeneric Kind = iota
	KindISBN
	KindAuthor
)

func (k Kind) String() string {
	switch k {
	case KindISBN:
		return "isbn"
	case KindAuthor:
		return "author"
	default:
		return "generic"
	}
}

var (
	wordRe  = regexp.MustCompile(`[A-Za-zÀ-ÿ'\-]+`)
	digitRe = regexp.MustCompile(`\d`)
)

// AsISBN returns the cleaned identifier when q is ISBN-shaped, else "".
func AsISBN(q string) string {
	c := isbn.Clean(q)
	if len(c) == 13 && !strings.ContainsAny(c, "X") {
		return c
	}
	if len(c) == 10 && isbn10Shape(c) {
		return c
	}
	return ""
}

func isbn10Shape(c string) bool {
	for i := 0; i < 9; i++ {
		if c[i] < '0' || c[i] > '9' {
			return false
		}
	}
	return c[9] == 'X' || (c[9] >= '0' && c[9] <= '9')
}

// looksLikeAuthor: 2-4 letter tokens, no digits, and not already a
// qualified provider query.
func looksLikeAuthor(q string) bool {
	ql := strings.ToLower(q)
	for _, tok := range []string{":", " isbn", " intitle", " inauthor"} {
		if strings.Contains(ql, tok) {
			return false
		}
	}
	if digitRe.MatchString(q) {
		return false
	}
	n := len(wordRe.FindAllString(q, -1))
	return n >= 2 && n <= 4
}

// Classify inspects a free-text query and picks a strategy.
func Classify(q string) Kind {
	if AsISBN(q) != "" {
		return KindISBN
	}
	if looksLikeAuthor(q) {
		return KindAuthor
	}
	return KindGeneric
}

// Attempts builds the ordered provider query expressions for q.
// ISBN-shaped input yields exactly one exact-identifier attempt; the
// author heuristic tries the author-qualified form first; anything else
// starts with the bare query.
func Attempts(q string) []string {
	q = util.Normalize(q)
	if q == "" {
		return nil
	}
	if c := AsISBN(q); c != "" {
		return []string{"isbn:" + c}
	}
	if looksLikeAuthor(q) {
		return []string{`inauthor:"` + q + `"`, `intitle:"` + q + `"`, q}
	}
	return []string{q, `inauthor:"` + q + `"`, `intitle:"` + q + `"`}
}
