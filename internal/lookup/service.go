// Package lookup resolves noisy identifiers into canonical records by
// querying the metadata providers in a fixed priority order.
package lookup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/isbn"
)

// ISBNSource resolves one identifier; nil means no match.
type ISBNSource interface {
	LookupByISBN(ctx context.Context, isbn string) *book.Record
}

// TextSearcher runs a free-text metadata search.
type TextSearcher interface {
	SearchText(ctx context.Context, q string, limit int) []book.Record
}

// Cache persists resolved records between runs. The sqlite store
// implements it; a nil cache disables caching.
type Cache interface {
	CacheGet(ctx context.Context, key string) ([]byte, bool)
	CachePut(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Service orders the adapters: the bibliographic API first, then the
// keyed commercial catalog, the library commons, and the retailer
// scrapers as a last resort.
type Service struct {
	google   ISBNSource
	catalog  ISBNSource
	commons  ISBNSource
	web      ISBNSource
	searcher TextSearcher

	cache    Cache
	cacheTTL time.Duration
}

func NewService(google ISBNSource, catalog ISBNSource, commons ISBNSource, web ISBNSource, searcher TextSearcher, cache Cache) *Service {
	return &Service{
		google:   google,
		catalog:  catalog,
		commons:  commons,
		web:      web,
		searcher: searcher,
		cache:    cache,
		cacheTTL: 7 * 24 * time.Hour,
	}
}

// SetCacheTTL overrides the default one-week cache lifetime.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// ResolveByIdentifier turns a raw identifier (barcode payload, pasted
// text, form input) into a record. The raw value must reduce to a
// syntactically valid ISBN, either directly after cleaning or by
// extracting a 13-digit candidate from the surrounding noise;
// otherwise the lookup is rejected outright. nil means every source
// missed.
func (s *Service) ResolveByIdentifier(ctx context.Context, raw string) *book.Record {
	c := isbn.Clean(raw)
	if !isbn.ValidISBN13(c) && !isbn.ValidISBN10(c) {
		c = isbn.ExtractFromText(raw)
	}
	if c == "" {
		return nil
	}

	key := "isbn:" + c
	if s.cache != nil {
		if payload, ok := s.cache.CacheGet(ctx, key); ok {
			var rec book.Record
			if json.Unmarshal(payload, &rec) == nil && rec.Title != "" {
				return &rec
			}
		}
	}

	rec := s.resolve(ctx, c)
	if rec != nil && s.cache != nil {
		if payload, err := json.Marshal(rec); err == nil {
			_ = s.cache.CachePut(ctx, key, payload, s.cacheTTL)
		}
	}
	return rec
}

func (s *Service) resolve(ctx context.Context, c string) *book.Record {
	if s.google != nil {
		if rec := s.google.LookupByISBN(ctx, c); rec != nil {
			return rec
		}
	}
	if s.catalog != nil {
		if rec := s.catalog.LookupByISBN(ctx, c); rec != nil {
			return rec
		}
	}
	if s.commons != nil {
		if rec := s.commons.LookupByISBN(ctx, c); rec != nil {
			return rec
		}
	}
	if s.web == nil {
		return nil
	}
	rec := s.web.LookupByISBN(ctx, c)
	if rec == nil {
		return nil
	}

	// A scraped record is usually thin. One fill-only pass over the
	// structured sources rounds it out; the scraped fields always win.
	id := rec.ISBN
	if id == "" {
		id = c
	}
	if s.google != nil {
		rec.MergeMissing(s.google.LookupByISBN(ctx, id))
	}
	if s.commons != nil {
		rec.MergeMissing(s.commons.LookupByISBN(ctx, id))
	}
	return rec
}

// SearchText is the free-text path. It goes to the bibliographic API
// alone; the classifier inside the adapter already orders the
// field-qualified attempts.
func (s *Service) SearchText(ctx context.Context, q string, limit int) []book.Record {
	if s.searcher == nil {
		return nil
	}
	return s.searcher.SearchText(ctx, q, limit)
}
