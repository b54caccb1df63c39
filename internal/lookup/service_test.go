package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kajdahl/booklog/internal/book"
)

type stubSource struct {
	rec   *book.Record
	calls int
	got   string
}

func (s *stubSource) LookupByISBN(ctx context.Context, isbn string) *book.Record {
	s.calls++
	s.got = isbn
	if s.rec == nil {
		return nil
	}
	cp := *s.rec
	return &cp
}

type memCache struct{ m map[string][]byte }

func (c *memCache) CacheGet(ctx context.Context, key string) ([]byte, bool) {
	b, ok := c.m[key]
	return b, ok
}

func (c *memCache) CachePut(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	c.m[key] = payload
	return nil
}

func TestResolvePriorityShortCircuit(t *testing.T) {
	google := &stubSource{rec: &book.Record{ISBN: "9780140449136", Title: "The Odyssey", Source: book.SourceGoogle}}
	catalog := &stubSource{rec: &book.Record{Title: "wrong"}}
	commons := &stubSource{rec: &book.Record{Title: "wrong"}}
	web := &stubSource{rec: &book.Record{Title: "wrong"}}
	svc := NewService(google, catalog, commons, web, nil, nil)

	rec := svc.ResolveByIdentifier(context.Background(), "9780140449136")
	assert.NotNil(t, rec)
	assert.Equal(t, "The Odyssey", rec.Title)
	assert.Equal(t, book.SourceGoogle, rec.Source)
	assert.Equal(t, 1, google.calls)
	assert.Zero(t, catalog.calls, "lower-priority adapters must not run after a hit")
	assert.Zero(t, commons.calls)
	assert.Zero(t, web.calls)
}

func TestResolveFallsThroughInOrder(t *testing.T) {
	google := &stubSource{}
	catalog := &stubSource{}
	commons := &stubSource{rec: &book.Record{ISBN: "9780140449136", Title: "The Odyssey", Source: book.SourceOpenLibrary}}
	web := &stubSource{rec: &book.Record{Title: "wrong"}}
	svc := NewService(google, catalog, commons, web, nil, nil)

	rec := svc.ResolveByIdentifier(context.Background(), "9780140449136")
	assert.Equal(t, book.SourceOpenLibrary, rec.Source)
	assert.Equal(t, 1, google.calls)
	assert.Equal(t, 1, catalog.calls)
	assert.Zero(t, web.calls)
}

func TestResolveRejectsNonISBN(t *testing.T) {
	google := &stubSource{rec: &book.Record{Title: "x"}}
	svc := NewService(google, nil, nil, nil, nil, nil)
	assert.Nil(t, svc.ResolveByIdentifier(context.Background(), "dan brown origin"))
	assert.Zero(t, google.calls, "invalid identifiers never reach the network")
}

func TestResolveExtractsFromNoisyText(t *testing.T) {
	google := &stubSource{rec: &book.Record{ISBN: "9780439023528", Title: "The Hunger Games"}}
	svc := NewService(google, nil, nil, nil, nil, nil)
	rec := svc.ResolveByIdentifier(context.Background(), "978-0-439-02352-8 51299")
	assert.NotNil(t, rec)
	assert.Equal(t, "9780439023528", rec.ISBN)
}

func TestResolveWebFallbackGetsEnriched(t *testing.T) {
	commons := &stubSource{}
	web := &stubSource{rec: &book.Record{ISBN: "9780140449136", Title: "The Odyssey", Source: book.SourceSaxo}}

	// Misses on the priority pass, answers on the enrichment pass.
	first := true
	google := &enrichSource{onSecond: &book.Record{
		ISBN: "9780140449136", Title: "ignored", PageCount: 541, Publisher: "Penguin", Source: book.SourceGoogle,
	}, first: &first}
	svc := NewService(google, nil, commons, web, nil, nil)

	rec := svc.ResolveByIdentifier(context.Background(), "9780140449136")
	assert.NotNil(t, rec)
	assert.Equal(t, book.SourceSaxo, rec.Source, "scraped provenance survives enrichment")
	assert.Equal(t, "The Odyssey", rec.Title, "populated fields are never overwritten")
	assert.Equal(t, 541, rec.PageCount, "empty fields are filled")
	assert.Equal(t, "Penguin", rec.Publisher)
}

func TestResolveISBN10ReachesWebFallback(t *testing.T) {
	google := &stubSource{}
	catalog := &stubSource{}
	commons := &stubSource{}
	web := &stubSource{rec: &book.Record{ISBN: "9780439420891", Title: "Harry Potter og Hemmelighedernes Kammer", Source: book.SourceSaxo}}
	svc := NewService(google, catalog, commons, web, nil, nil)

	rec := svc.ResolveByIdentifier(context.Background(), "0-439-42089-X")
	assert.NotNil(t, rec)
	assert.Equal(t, book.SourceSaxo, rec.Source)
	assert.Equal(t, 1, web.calls)
	assert.Equal(t, "043942089X", web.got, "the cleaned ISBN-10 goes to the retailers unconverted")
}

type enrichSource struct {
	onSecond *book.Record
	first    *bool
}

func (e *enrichSource) LookupByISBN(ctx context.Context, isbn string) *book.Record {
	if *e.first {
		*e.first = false
		return nil
	}
	cp := *e.onSecond
	return &cp
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	google := &stubSource{rec: &book.Record{ISBN: "9780140449136", Title: "The Odyssey"}}
	cache := &memCache{m: map[string][]byte{}}
	svc := NewService(google, nil, nil, nil, nil, cache)

	first := svc.ResolveByIdentifier(context.Background(), "9780140449136")
	assert.NotNil(t, first)
	assert.Equal(t, 1, google.calls)

	second := svc.ResolveByIdentifier(context.Background(), "9780140449136")
	assert.NotNil(t, second)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 1, google.calls, "cache hit must not touch the adapters")
}

type stubSearcher struct{ got string }

func (s *stubSearcher) SearchText(ctx context.Context, q string, limit int) []book.Record {
	s.got = q
	return []book.Record{{Title: "hit"}}
}

func TestSearchTextDelegates(t *testing.T) {
	ts := &stubSearcher{}
	svc := NewService(nil, nil, nil, nil, ts, nil)
	out := svc.SearchText(context.Background(), "dan brown", 5)
	assert.Len(t, out, 1)
	assert.Equal(t, "dan brown", ts.got)
}
