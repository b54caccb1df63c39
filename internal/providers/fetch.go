package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Retail sites block default Go clients, so page fetches identify as a
// desktop browser with a Danish locale. A small rate limiter keeps the
// scrape-many paths polite.
const (
	scrapeUA     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 BookLogger/1.1"
	scrapeLocale = "da-DK,da;q=0.9,en;q=0.8"
)

type pageFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	referer string
}

func newPageFetcher(referer string) *pageFetcher {
	return &pageFetcher{
		client:  &http.Client{Timeout: 12 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 8),
		referer: referer,
	}
}

// get fetches a page and returns the response. Redirects are followed;
// the caller can read the final URL off resp.Request. Any failure or
// non-2xx status returns nil.
func (f *pageFetcher) get(ctx context.Context, u string) *http.Response {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", scrapeUA)
	req.Header.Set("Accept-Language", scrapeLocale)
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil
	}
	return resp
}

// page parses a fetched URL into a DOM plus its rendered text, which
// the regex extractors scan. finalURL reflects any redirects.
func (f *pageFetcher) page(ctx context.Context, u string) (doc *goquery.Document, text, finalURL string) {
	resp := f.get(ctx, u)
	if resp == nil {
		return nil, "", ""
	}
	defer resp.Body.Close()
	finalURL = u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", finalURL
	}
	return doc, flattenText(doc.Text()), finalURL
}

// flattenText collapses runs of spaces but keeps line breaks, so the
// labelled-field regexes stop at the end of a line instead of eating
// whatever block follows.
func flattenText(raw string) string {
	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return strings.Join(lines, "\n")
}
