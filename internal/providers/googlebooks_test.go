package providers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func textResp(body string) *http.Response {
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}
}

const gbOdysseyBody = `{"items":[{"id":"v1","volumeInfo":{
	"title":"The Odyssey","authors":["Homer"],"publisher":"Penguin",
	"publishedDate":"2003-01-30","pageCount":541,"language":"en",
	"industryIdentifiers":[{"type":"ISBN_13","identifier":"9780140449136"}],
	"imageLinks":{"thumbnail":"http://books.google.com/t.jpg","extraLarge":"http://books.google.com/xl.jpg"}}}]}`

func TestGoogleBooksLookupByISBN(t *testing.T) {
	g := NewGoogleBooks("", "")
	g.client.Transport = rtFunc(func(r *http.Request) (*http.Response, error) {
		if q := r.URL.Query().Get("q"); q != "isbn:9780140449136" {
			t.Fatalf("query: %s", q)
		}
		if r.URL.Query().Get("maxResults") != "1" {
			t.Fatalf("maxResults: %s", r.URL.Query().Get("maxResults"))
		}
		return textResp(gbOdysseyBody), nil
	})
	rec := g.LookupByISBN(context.Background(), "9780140449136")
	if rec == nil {
		t.Fatal("nil record")
	}
	if rec.Title != "The Odyssey" || rec.Author != "Homer" {
		t.Fatalf("record: %+v", rec)
	}
	if rec.ISBN != "9780140449136" {
		t.Fatalf("isbn: %s", rec.ISBN)
	}
	if rec.Thumbnail != "https://books.google.com/xl.jpg" {
		t.Fatalf("cover should prefer extraLarge over thumbnail, https: %s", rec.Thumbnail)
	}
	if rec.Source != "google" {
		t.Fatalf("source: %s", rec.Source)
	}
}

func TestGoogleBooksLookupByISBNNoMatch(t *testing.T) {
	g := NewGoogleBooks("", "")
	g.client.Transport = rtFunc(func(r *http.Request) (*http.Response, error) {
		return textResp(`{"items":[]}`), nil
	})
	if rec := g.LookupByISBN(context.Background(), "9780140449136"); rec != nil {
		t.Fatalf("want nil, got %+v", rec)
	}
}

func TestGoogleBooksSearchTextDedupesAcrossPasses(t *testing.T) {
	g := NewGoogleBooks("", "da")
	var calls int
	g.client.Transport = rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return textResp(gbOdysseyBody), nil
	})
	got := g.SearchText(context.Background(), "the odyssey homer", 8)
	if calls != 2 {
		t.Fatalf("want a preferred-language pass plus an unrestricted pass, got %d calls", calls)
	}
	if len(got) != 1 {
		t.Fatalf("same volume id in both passes must collapse to 1, got %d", len(got))
	}
	if got[0].Source != "google-search" {
		t.Fatalf("source: %s", got[0].Source)
	}
}

func TestGoogleBooksSearchTextAttemptOrder(t *testing.T) {
	g := NewGoogleBooks("", "")
	var queries []string
	g.client.Transport = rtFunc(func(r *http.Request) (*http.Response, error) {
		queries = append(queries, r.URL.Query().Get("q"))
		return textResp(`{}`), nil
	})
	g.SearchText(context.Background(), "Dan Brown", 8)
	if len(queries) != 3 {
		t.Fatalf("want 3 attempts got %d: %v", len(queries), queries)
	}
	if queries[0] != `inauthor:"Dan Brown"` {
		t.Fatalf("two-token queries try the author field first, got %q", queries[0])
	}
}

func TestGoogleBooksHarvestISBNs(t *testing.T) {
	body := `{"items":[
		{"id":"a","volumeInfo":{"industryIdentifiers":[{"type":"ISBN_13","identifier":"9780140449136"}]}},
		{"id":"b","volumeInfo":{"industryIdentifiers":[{"type":"ISBN_13","identifier":"9780140449136"}]}},
		{"id":"c","volumeInfo":{"industryIdentifiers":[{"type":"ISBN_13","identifier":"9781111111111"}]}},
		{"id":"d","volumeInfo":{"industryIdentifiers":[{"type":"ISBN_10","identifier":"0140449132"}]}}]}`
	g := NewGoogleBooks("", "")
	g.client.Transport = rtFunc(func(r *http.Request) (*http.Response, error) {
		return textResp(body), nil
	})
	got := g.HarvestISBNs(context.Background(), "the odyssey", 5)
	if len(got) != 1 || got[0] != "9780140449136" {
		t.Fatalf("want the one distinct valid ISBN-13, got %v", got)
	}
}
