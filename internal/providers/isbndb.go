package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/util"
)

const isbndbEndpoint = "https://api2.isbndb.com"

// ISBNdb is the keyed commercial catalog. Without an API key the
// adapter is permanently disabled and every lookup is a no-op.
type ISBNdb struct {
	client *http.Client
	apiKey string
}

func NewISBNdb(apiKey string) *ISBNdb {
	return &ISBNdb{client: &http.Client{Timeout: 10 * time.Second}, apiKey: strings.TrimSpace(apiKey)}
}

// Enabled reports whether an access key is configured.
func (db *ISBNdb) Enabled() bool { return db.apiKey != "" }

type isbndbResp struct {
	Book struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		Language      string   `json:"language"`
		Pages         int      `json:"pages"`
		DatePublished string   `json:"date_published"`
		Image         string   `json:"image"`
		Subjects      []string `json:"subjects"`
		Overview      string   `json:"overview"`
	} `json:"book"`
}

// LookupByISBN queries the authenticated book endpoint. Any failure,
// including the missing key, yields nil without side effects.
func (db *ISBNdb) LookupByISBN(ctx context.Context, s string) *book.Record {
	if !db.Enabled() {
		return nil
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, isbndbEndpoint+"/book/"+url.PathEscape(s), nil)
	req.Header.Set("X-API-Key", db.apiKey)
	resp, err := db.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil
	}
	var out isbndbResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	b := out.Book
	return &book.Record{
		ISBN:          s,
		Title:         util.Normalize(b.Title),
		Author:        util.Normalize(strings.Join(b.Authors, ", ")),
		Thumbnail:     util.SecureURL(b.Image),
		PageCount:     max(b.Pages, 0),
		PublishedDate: util.Normalize(b.DatePublished),
		Publisher:     util.Normalize(b.Publisher),
		Categories:    strings.Join(b.Subjects, ", "),
		Language:      b.Language,
		Description:   b.Overview,
		Source:        book.SourceISBNdb,
	}
}
