package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kajdahl/booklog/internal/book"
	"github.com/kajdahl/booklog/internal/config"
	"github.com/kajdahl/booklog/internal/db"
	"github.com/kajdahl/booklog/internal/scan"
)

// Resolver is the lookup orchestrator surface the handlers need.
type Resolver interface {
	ResolveByIdentifier(ctx context.Context, raw string) *book.Record
	SearchText(ctx context.Context, q string, limit int) []book.Record
}

// RetailerSearcher is the retailer search engine surface.
type RetailerSearcher interface {
	SearchByTitle(ctx context.Context, q string, max int) []book.Record
	SearchByAuthor(ctx context.Context, q string, max int) []book.Record
}

// URLScraper handles pasted product page URLs.
type URLScraper interface {
	ScrapeURL(ctx context.Context, u string) *book.Record
}

type Server struct {
	cfg      *config.Config
	db       *db.DB
	resolver Resolver
	retailer RetailerSearcher
	scraper  URLScraper          // optional
	barcode  scan.BarcodeDecoder // optional
	ocr      scan.OCREngine      // optional
	chi      *chi.Mux
}

// SetURLScraper enables pasted-URL lookups.
func (s *Server) SetURLScraper(sc URLScraper) { s.scraper = sc }

func NewServer(cfg *config.Config, database *db.DB, resolver Resolver, retailer RetailerSearcher, barcode scan.BarcodeDecoder, ocr scan.OCREngine) *Server {
	return &Server{
		cfg:      cfg,
		db:       database,
		resolver: resolver,
		retailer: retailer,
		barcode:  barcode,
		ocr:      ocr,
		chi:      chi.NewRouter(),
	}
}

func (s *Server) Router() http.Handler {
	r := s.chi
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	})

	s.mountAPI(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
