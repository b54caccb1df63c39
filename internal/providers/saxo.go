package providers

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/isbn"
	"github.com/kajdahl/booklog/internal/util"
)

// ISBNHarvester supplies candidate ISBN-13s for a free-text query when
// the retailer's own search comes back empty. GoogleBooks implements it.
type ISBNHarvester interface {
	HarvestISBNs(ctx context.Context, q string, want int) []string
}

// Saxo scrapes saxo.com product and search pages. The live search UI
// is brittle: its endpoint has moved between path shapes over time, so
// several are tried, and an empty result set falls back to harvesting
// ISBNs and retrying per identifier.
type Saxo struct {
	f         *pageFetcher
	harvester ISBNHarvester
}

func NewSaxo(h ISBNHarvester) *Saxo {
	return &Saxo{f: newPageFetcher("https://www.saxo.com/dk/"), harvester: h}
}

var saxoHosts = map[string]bool{
	"saxo.com":     true,
	"www.saxo.com": true,
	"saxo.dk":      true,
	"www.saxo.dk":  true,
}

// normalizeSaxoURL forces https, canonicalizes the host, and drops
// query, fragment and any trailing slash. Two URLs normalizing to the
// same string are the same product page.
func normalizeSaxoURL(u string) string {
	p, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return u
	}
	host := strings.ToLower(p.Host)
	if saxoHosts[host] {
		host = "www.saxo.com"
	}
	out := "https://" + host + p.Path
	if strings.HasSuffix(out, "/") && len(p.Path) > 1 {
		out = strings.TrimSuffix(out, "/")
	}
	return out
}

var saxoSlugISBNRe = regexp.MustCompile(`(?:^|/|_)bog_(97[89]\d{10})(?:$|/)`)

// isbnFromSaxoURL extracts an ISBN-13 embedded in a product slug like
// /dk/the-odyssey_bog_9780140449136.
func isbnFromSaxoURL(u string) string {
	path := strings.ToLower(u)
	if p, err := url.Parse(u); err == nil {
		path = strings.ToLower(p.Path)
	}
	m := saxoSlugISBNRe.FindStringSubmatch(path)
	if m != nil && isbn.ValidISBN13(m[1]) {
		return m[1]
	}
	return ""
}

var saxoProductHrefRe = regexp.MustCompile(`/bog(?:-p)?/`)

func isSaxoProductHref(href string) bool {
	if href == "" || strings.Contains(href, "s?q=") {
		return false
	}
	return saxoProductHrefRe.MatchString(href) ||
		strings.Contains(href, "_bog_") ||
		strings.HasSuffix(href, ".aspx")
}

// collectProductLinks harvests product anchors from a search results
// page, normalized and deduplicated in discovery order.
func collectProductLinks(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}
	var links []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if !isSaxoProductHref(href) {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = "https://www.saxo.com" + href
		}
		norm := normalizeSaxoURL(href)
		if !seen[norm] {
			seen[norm] = true
			links = append(links, norm)
		}
	})
	return links
}

// searchPages tries the search URL shapes Saxo has been observed under
// and accumulates product links across all of them.
func (sx *Saxo) searchPages(ctx context.Context, q string) []string {
	esc := url.QueryEscape(util.Normalize(q))
	var links []string
	seen := map[string]bool{}
	for _, u := range []string{
		"https://www.saxo.com/dk/s?q=" + esc,
		"https://www.saxo.com/dk/search?q=" + esc,
		"https://www.saxo.com/dk/soeg?q=" + esc,
	} {
		doc, _, _ := sx.f.page(ctx, u)
		for _, l := range collectProductLinks(doc) {
			if !seen[l] {
				seen[l] = true
				links = append(links, l)
			}
		}
	}
	return links
}

// linksForISBN searches Saxo with the ISBN as the query and probes the
// conventional direct-product URL shapes, which usually redirect to the
// canonical page. The probes embed a 13-digit slug, so an ISBN-10 only
// goes through the search pages.
func (sx *Saxo) linksForISBN(ctx context.Context, code string) []string {
	var out []string
	seen := map[string]bool{}
	esc := url.QueryEscape(code)
	for _, u := range []string{
		"https://www.saxo.com/dk/s?q=" + esc,
		"https://www.saxo.com/dk/search?q=" + esc,
	} {
		doc, _, _ := sx.f.page(ctx, u)
		for _, l := range collectProductLinks(doc) {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	if len(code) != 13 {
		return out
	}
	for _, u := range []string{
		"https://www.saxo.com/dk/bog_" + code,
		"https://www.saxo.com/dk/_bog_" + code,
	} {
		resp := sx.f.get(ctx, u)
		if resp == nil {
			continue
		}
		final := u
		if resp.Request != nil && resp.Request.URL != nil {
			final = resp.Request.URL.String()
		}
		resp.Body.Close()
		norm := normalizeSaxoURL(final)
		if strings.Contains(norm, "bog_") && !seen[norm] {
			seen[norm] = true
			out = append(out, norm)
		}
	}
	return out
}

// ScrapeProduct extracts a record from one product page via the usual
// cascade: JSON-LD, then h1/OG meta, then regex scans of page text.
func (sx *Saxo) ScrapeProduct(ctx context.Context, u string) *book.Record {
	doc, text, _ := sx.f.page(ctx, u)
	if doc == nil {
		return nil
	}

	jld := parseJSONLD(doc)
	h1 := util.Normalize(doc.Find("h1").First().Text())
	ogTitle, ogImage := ogMeta(doc)

	author := jld.Author
	if author == "" {
		author = authorFromText(text)
	}

	code := util.FirstNonEmpty(jld.ISBN13, isbn13FromPageText(text), isbnFromSaxoURL(u))

	rec := &book.Record{
		ISBN:      code,
		Title:     cleanProductTitle(util.FirstNonEmpty(jld.Title, h1, ogTitle), author),
		Author:    author,
		Thumbnail: util.FirstNonEmpty(jld.Thumbnail, ogImage),
		PageCount: pageCountFromText(text),
		Publisher: publisherFromText(text),
		Language:  languageFromText(text),
		Source:    book.SourceSaxo,
	}
	return rec
}

var saxoAuthorRe = regexp.MustCompile(`(?i)\b(?:af|forfatter)\s*[:\-]?\s*([A-Za-zÀ-ÿ .\-']{2,60})`)

// authorFromText is best-effort: Saxo labels the author with "af ..."
// (Danish for "by").
func authorFromText(text string) string {
	m := saxoAuthorRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return util.Normalize(strings.Trim(m[1], " .,-"))
}

// LookupByISBN is the web-fallback single-record path: find the
// product page for one identifier and scrape it.
func (sx *Saxo) LookupByISBN(ctx context.Context, s string) *book.Record {
	for _, l := range sx.linksForISBN(ctx, s) {
		rec := sx.ScrapeProduct(ctx, l)
		if rec == nil {
			continue
		}
		if rec.ISBN == "" {
			rec.ISBN = s
		}
		if rec.Title != "" || rec.Thumbnail != "" || rec.Publisher != "" {
			return rec
		}
	}
	return nil
}

// SearchByTitle finds product pages for a free-text query and returns
// deduplicated records in acceptance order.
//
// Candidate URLs come from the search pages, or, when those return
// nothing usable, from Google Books ISBN harvesting retried against
// Saxo per identifier. Dedup happens at three levels: normalized URL,
// ISBN embedded in the URL slug, and finally scraped ISBN-13 or the
// normalized title|author key. Scraping stops as soon as maxResults
// records are accepted.
func (sx *Saxo) SearchByTitle(ctx context.Context, q string, maxResults int) []book.Record {
	q = util.Normalize(q)
	if q == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	links := sx.searchPages(ctx, q)
	if len(links) == 0 && sx.harvester != nil {
		for _, harvested := range sx.harvester.HarvestISBNs(ctx, q, 10) {
			for _, l := range sx.linksForISBN(ctx, harvested) {
				if !containsString(links, l) {
					links = append(links, l)
				}
			}
			if len(links) >= maxResults {
				break
			}
		}
	}

	var out []book.Record
	seenURLs := map[string]bool{}
	seenISBN := map[string]bool{}
	seenKey := map[string]bool{}
	for _, href := range links {
		if len(out) >= maxResults {
			break
		}
		norm := normalizeSaxoURL(href)
		if seenURLs[norm] {
			continue
		}
		seenURLs[norm] = true

		// A slug ISBN we already accepted means the page is a
		// duplicate; skip without spending a fetch.
		if slug := isbnFromSaxoURL(norm); slug != "" && seenISBN[slug] {
			continue
		}

		rec := sx.ScrapeProduct(ctx, norm)
		if rec == nil || (rec.Title == "" && rec.ISBN == "") {
			continue
		}

		if rec.ISBN != "" && isbn.ValidISBN13(rec.ISBN) {
			if seenISBN[rec.ISBN] {
				continue
			}
			seenISBN[rec.ISBN] = true
		} else {
			key := rec.FallbackKey()
			if seenKey[key] {
				continue
			}
			seenKey[key] = true
		}

		out = append(out, *rec)
	}
	return out
}

// SearchByAuthor reuses the title search (Saxo's q= handles both) and
// keeps records whose author loosely contains every query token,
// case- and diacritic-insensitively.
func (sx *Saxo) SearchByAuthor(ctx context.Context, q string, maxResults int) []book.Record {
	if maxResults <= 0 {
		maxResults = 20
	}
	base := sx.SearchByTitle(ctx, q, maxResults*2)
	var out []book.Record
	for _, rec := range base {
		if authorMatches(rec.Author, q) {
			out = append(out, rec)
			if len(out) >= maxResults {
				break
			}
		}
	}
	return out
}

func authorMatches(candidate, q string) bool {
	cand := util.Fold(util.Normalize(candidate))
	qn := util.Fold(util.Normalize(q))
	if qn == "" {
		return true
	}
	for _, tok := range strings.Fields(qn) {
		if !strings.Contains(cand, tok) {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
