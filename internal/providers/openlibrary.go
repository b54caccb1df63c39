package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/util"
)

const olBase = "https://openlibrary.org"

// OpenLibrary adapts the Open Library edition and search endpoints.
type OpenLibrary struct {
	client *http.Client
}

func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{client: &http.Client{Timeout: 10 * time.Second}}
}

type olEdition struct {
	Title         string        `json:"title"`
	Authors       []olAuthorRef `json:"authors"`
	NumberOfPages int           `json:"number_of_pages"`
	PublishDate   string        `json:"publish_date"`
	Publishers    []string      `json:"publishers"`
	Languages     []olLangRef   `json:"languages"`
}

type olLangRef struct {
	Key string `json:"key"`
}

// language maps an edition's first language reference, "/languages/eng",
// to its bare code.
func (ed olEdition) language() string {
	if len(ed.Languages) == 0 {
		return ""
	}
	return strings.TrimPrefix(ed.Languages[0].Key, "/languages/")
}

type olAuthorRef struct {
	Key string `json:"key"`
}

type olAuthor struct {
	Name string `json:"name"`
}

type olDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	ISBN13           []string `json:"isbn13"`
	CoverID          int      `json:"cover_i"`
	PagesMedian      int      `json:"number_of_pages_median"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
	Language         []string `json:"language"`
}

type olSearchResp struct {
	Docs []olDoc `json:"docs"`
}

func (ol *OpenLibrary) getJSON(ctx context.Context, u string, v any) bool {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	resp, err := ol.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(v) == nil
}

// LookupByISBN fetches the edition record directly by ISBN. Each author
// reference costs one extra request to resolve the display name; a
// failing author lookup just omits that name, it never blanks the rest.
func (ol *OpenLibrary) LookupByISBN(ctx context.Context, s string) *book.Record {
	var ed olEdition
	if !ol.getJSON(ctx, olBase+"/isbn/"+url.PathEscape(s)+".json", &ed) {
		return nil
	}
	var names []string
	for _, ref := range ed.Authors {
		if ref.Key == "" {
			continue
		}
		var a olAuthor
		if ol.getJSON(ctx, olBase+ref.Key+".json", &a) && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return &book.Record{
		ISBN:          s,
		Title:         util.Normalize(ed.Title),
		Author:        strings.Join(names, ", "),
		PageCount:     max(ed.NumberOfPages, 0),
		PublishedDate: util.Normalize(ed.PublishDate),
		Publisher:     util.Normalize(strings.Join(ed.Publishers, ", ")),
		Language:      ed.language(),
		Source:        book.SourceOpenLibrary,
	}
}

// SearchText is the looser free-text endpoint. It is exposed as a
// fallback adapter; the default text-search path does not use it.
func (ol *OpenLibrary) SearchText(ctx context.Context, q string, limit int) []book.Record {
	q = util.Normalize(q)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 8
	}
	u := olBase + "/search.json?q=" + url.QueryEscape(q) + "&limit=" + strconv.Itoa(limit)
	var resp olSearchResp
	if !ol.getJSON(ctx, u, &resp) {
		return nil
	}
	var out []book.Record
	for _, d := range resp.Docs {
		rec := book.Record{
			Title:     util.Normalize(d.Title),
			Author:    util.Normalize(strings.Join(d.AuthorName, ", ")),
			ISBN:      bestDocISBN(d),
			PageCount: max(d.PagesMedian, 0),
			Source:    book.SourceOpenLibrarySearch,
		}
		if d.FirstPublishYear > 0 {
			rec.PublishedDate = strconv.Itoa(d.FirstPublishYear)
		}
		if d.CoverID != 0 {
			rec.Thumbnail = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", d.CoverID)
		}
		if len(d.Publisher) > 0 {
			rec.Publisher = util.Normalize(strings.Join(d.Publisher[:min(2, len(d.Publisher))], ", "))
		}
		if len(d.Subject) > 0 {
			rec.Categories = strings.Join(d.Subject[:min(3, len(d.Subject))], ", ")
		}
		if len(d.Language) > 0 {
			rec.Language = d.Language[0]
		}
		out = append(out, rec)
	}
	return out
}

// bestDocISBN prefers a 13-digit value from the isbn13 list, then any
// 13-digit entry of the mixed isbn list, then whatever comes first.
func bestDocISBN(d olDoc) string {
	for _, list := range [][]string{d.ISBN13, d.ISBN} {
		for _, v := range list {
			if len(v) == 13 {
				return v
			}
		}
		if len(list) > 0 {
			return list[0]
		}
	}
	return ""
}
