package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/isbn"
	"github.com/kajdahl/booklog/internal/query"
	"github.com/kajdahl/booklog/internal/util"
)

const gbEndpoint = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooks adapts the Google Books volumes API. The adapter never
// fails loudly: transport errors, non-2xx statuses and malformed bodies
// all come back as "no match".
type GoogleBooks struct {
	client     *http.Client
	apiKey     string
	preferLang string // 2-letter code, "" = no restriction
}

func NewGoogleBooks(apiKey, preferLang string) *GoogleBooks {
	return &GoogleBooks{
		client:     &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		preferLang: preferLang,
	}
}

type gbIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type gbImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

type gbVolumeInfo struct {
	Title               string         `json:"title"`
	Authors             []string       `json:"authors"`
	Publisher           string         `json:"publisher"`
	PublishedDate       string         `json:"publishedDate"`
	Description         string         `json:"description"`
	IndustryIdentifiers []gbIdentifier `json:"industryIdentifiers"`
	PageCount           int            `json:"pageCount"`
	Categories          []string       `json:"categories"`
	ImageLinks          gbImageLinks   `json:"imageLinks"`
	Language            string         `json:"language"`
}

type gbVolume struct {
	ID   string       `json:"id"`
	Info gbVolumeInfo `json:"volumeInfo"`
}

type gbResp struct {
	Items []gbVolume `json:"items"`
}

func (g *GoogleBooks) fetch(ctx context.Context, params url.Values) []gbVolume {
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	params.Set("printType", "books")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, gbEndpoint+"?"+params.Encode(), nil)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil
	}
	var out gbResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	return out.Items
}

// LookupByISBN resolves a single identifier; nil means no match.
func (g *GoogleBooks) LookupByISBN(ctx context.Context, s string) *book.Record {
	params := url.Values{}
	params.Set("q", "isbn:"+s)
	params.Set("maxResults", "1")
	items := g.fetch(ctx, params)
	if len(items) == 0 {
		return nil
	}
	rec := volumeToRecord(items[0], book.SourceGoogle)
	rec.ISBN = s
	return rec
}

// SearchText runs the classifier's ordered attempts, first restricted
// to the preferred language, then unrestricted, concatenating both
// passes and deduplicating by volume id (preferred-language hits kept
// first). Results stay in provider relevance order.
func (g *GoogleBooks) SearchText(ctx context.Context, q string, limit int) []book.Record {
	attempts := query.Attempts(q)
	if len(attempts) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 8
	}

	run := func(lang string) []gbVolume {
		var items []gbVolume
		for _, at := range attempts {
			params := url.Values{}
			params.Set("q", at)
			params.Set("maxResults", strconv.Itoa(min(limit, 40)))
			if lang != "" {
				params.Set("langRestrict", lang)
			}
			got := g.fetch(ctx, params)
			items = append(items, got...)
			if len(got) > 0 {
				break
			}
		}
		return items
	}

	var items []gbVolume
	if g.preferLang != "" {
		items = run(g.preferLang)
	}
	if len(items) < limit {
		items = append(items, run("")...)
	}

	seen := map[string]bool{}
	var out []book.Record
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, *volumeToRecord(it, book.SourceGoogleSearch))
		if len(out) >= limit {
			break
		}
	}
	return out
}

// HarvestISBNs pages through search results collecting distinct valid
// ISBN-13 values, restricted to the preferred language. Used by the
// retailer search fallback when the retailer's own search comes back
// empty.
func (g *GoogleBooks) HarvestISBNs(ctx context.Context, q string, want int) []string {
	q = util.Normalize(q)
	if q == "" || want <= 0 {
		return nil
	}
	var isbns []string
	seen := map[string]bool{}
	for start := 0; start < 80 && len(isbns) < want; start += 40 {
		params := url.Values{}
		params.Set("q", q)
		params.Set("maxResults", "40")
		params.Set("startIndex", strconv.Itoa(start))
		if g.preferLang != "" {
			params.Set("langRestrict", g.preferLang)
		}
		items := g.fetch(ctx, params)
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			for _, id := range it.Info.IndustryIdentifiers {
				if id.Type != "ISBN_13" {
					continue
				}
				v := isbn.Clean(id.Identifier)
				if len(v) == 13 && isbn.ValidISBN13(v) && !seen[v] {
					seen[v] = true
					isbns = append(isbns, v)
					if len(isbns) >= want {
						break
					}
				}
			}
			if len(isbns) >= want {
				break
			}
		}
		if len(items) < 40 {
			break
		}
	}
	return isbns
}

// bestCover picks the largest available image, upgraded to https.
func bestCover(l gbImageLinks) string {
	return util.SecureURL(util.FirstNonEmpty(
		l.ExtraLarge, l.Large, l.Medium, l.Small, l.Thumbnail, l.SmallThumbnail))
}

// volumeISBNs pulls ISBN-13 and ISBN-10 from the identifiers list,
// deriving the 10 from a valid 978-prefixed 13 when absent.
func volumeISBNs(info gbVolumeInfo) (isbn13, isbn10 string) {
	for _, id := range info.IndustryIdentifiers {
		v := strings.TrimSpace(id.Identifier)
		if id.Type == "ISBN_13" && isbn13 == "" {
			isbn13 = v
		}
		if id.Type == "ISBN_10" && isbn10 == "" {
			isbn10 = v
		}
	}
	if isbn10 == "" && isbn13 != "" {
		isbn10 = isbn.ToISBN10(isbn13)
	}
	return isbn13, isbn10
}

func volumeToRecord(it gbVolume, source string) *book.Record {
	info := it.Info
	isbn13, isbn10 := volumeISBNs(info)
	return &book.Record{
		ISBN:          util.FirstNonEmpty(isbn13, isbn10),
		Title:         util.Normalize(info.Title),
		Author:        util.Normalize(strings.Join(info.Authors, ", ")),
		Thumbnail:     bestCover(info.ImageLinks),
		PageCount:     max(info.PageCount, 0),
		PublishedDate: util.Normalize(info.PublishedDate),
		Publisher:     util.Normalize(info.Publisher),
		Categories:    strings.Join(info.Categories, ", "),
		Language:      info.Language,
		Description:   info.Description,
		Source:        source,
	}
}
