package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kajdahl/booklog/internal/db"
	"github.com/kajdahl/booklog/internal/scan"
)

func (s *Server) mountAPI(r chi.Router) {
	r.Route("/api/books", func(br chi.Router) {
		br.Get("/", s.apiListBooks)
		br.Post("/", s.apiAddBook)
		br.Get("/export", s.apiExportCSV)
		br.Get("/{id}", s.apiGetBook)
		br.Put("/{id}", s.apiUpdateBook)
		br.Delete("/{id}", s.apiDeleteBook)
	})
	r.Get("/api/lookup", s.apiLookup)
	r.Get("/api/search", s.apiSearch)
	r.Get("/api/retailer/search", s.apiRetailerSearch)
	r.Post("/api/scan", s.apiScan)
	r.Post("/api/cover", s.apiCover)
}

func (s *Server) apiListBooks(w http.ResponseWriter, r *http.Request) {
	minRating, _ := strconv.Atoi(r.URL.Query().Get("min_rating"))
	books, err := s.db.ListBooks(r.Context(), r.URL.Query().Get("q"), minRating)
	if err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	if books == nil {
		books = []db.Book{}
	}
	writeJSON(w, books, 200)
}

func (s *Server) apiAddBook(w http.ResponseWriter, r *http.Request) {
	var b db.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, map[string]any{"error": "bad json"}, 400)
		return
	}
	if strings.TrimSpace(b.Title) == "" {
		writeJSON(w, map[string]any{"error": "title required"}, 400)
		return
	}
	if b.Source == "" {
		b.Source = "manual"
	}
	id, err := s.db.AddBook(r.Context(), &b)
	if err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	writeJSON(w, map[string]any{"id": id}, 201)
}

func (s *Server) apiGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, map[string]any{"error": "bad id"}, 400)
		return
	}
	b, err := s.db.GetBook(r.Context(), id)
	if err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	if b == nil {
		writeJSON(w, map[string]any{"error": "not found"}, 404)
		return
	}
	writeJSON(w, b, 200)
}

func (s *Server) apiUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, map[string]any{"error": "bad id"}, 400)
		return
	}
	existing, err := s.db.GetBook(r.Context(), id)
	if err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	if existing == nil {
		writeJSON(w, map[string]any{"error": "not found"}, 404)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeJSON(w, map[string]any{"error": "bad json"}, 400)
		return
	}
	existing.ID = id
	if err := s.db.UpdateBook(r.Context(), existing); err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	writeJSON(w, existing, 200)
}

func (s *Server) apiDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, map[string]any{"error": "bad id"}, 400)
		return
	}
	if err := s.db.DeleteBook(r.Context(), id); err != nil {
		writeJSON(w, map[string]any{"error": err.Error()}, 500)
		return
	}
	writeJSON(w, map[string]any{"deleted": id}, 200)
}

func (s *Server) apiExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="booklog.csv"`)
	if err := s.db.ExportCSV(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func (s *Server) apiLookup(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, map[string]any{"error": "id required"}, 400)
		return
	}
	// A pasted product URL goes straight to the host's scraper; an
	// ISBN embedded in the URL still resolves normally if that fails.
	if s.scraper != nil && (strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")) {
		if rec := s.scraper.ScrapeURL(r.Context(), id); rec != nil {
			writeJSON(w, rec, 200)
			return
		}
	}
	rec := s.resolver.ResolveByIdentifier(r.Context(), id)
	if rec == nil {
		writeJSON(w, map[string]any{"error": "no match"}, 404)
		return
	}
	writeJSON(w, rec, 200)
}

func (s *Server) apiSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, map[string]any{"error": "q required"}, 400)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs := s.resolver.SearchText(r.Context(), q, limit)
	writeJSON(w, recs, 200)
}

func (s *Server) apiRetailerSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, map[string]any{"error": "q required"}, 400)
		return
	}
	max, _ := strconv.Atoi(r.URL.Query().Get("max"))
	if max <= 0 {
		max = s.cfg.Retailer.MaxResults
	}
	var recs any
	if r.URL.Query().Get("by") == "author" {
		recs = s.retailer.SearchByAuthor(r.Context(), q, max)
	} else {
		recs = s.retailer.SearchByTitle(r.Context(), q, max)
	}
	writeJSON(w, recs, 200)
}

func (s *Server) apiScan(w http.ResponseWriter, r *http.Request) {
	if s.barcode == nil {
		writeJSON(w, map[string]any{"error": "barcode decoding not configured"}, 503)
		return
	}
	img, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil || len(img) == 0 {
		writeJSON(w, map[string]any{"error": "image body required"}, 400)
		return
	}
	code := scan.ISBNFromImage(r.Context(), s.barcode, img)
	if code == "" {
		writeJSON(w, map[string]any{"error": "no barcode found"}, 404)
		return
	}
	rec := s.resolver.ResolveByIdentifier(r.Context(), code)
	if rec == nil {
		writeJSON(w, map[string]any{"isbn": code, "error": "no match"}, 404)
		return
	}
	writeJSON(w, rec, 200)
}

func (s *Server) apiCover(w http.ResponseWriter, r *http.Request) {
	if s.ocr == nil {
		writeJSON(w, map[string]any{"error": "ocr not configured"}, 503)
		return
	}
	img, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil || len(img) == 0 {
		writeJSON(w, map[string]any{"error": "image body required"}, 400)
		return
	}
	text, err := s.ocr.Text(r.Context(), img)
	if err != nil || strings.TrimSpace(text) == "" {
		writeJSON(w, map[string]any{"error": "no text recognized"}, 404)
		return
	}
	title, author := scan.GuessTitleAuthor(text)
	if title == "" {
		writeJSON(w, map[string]any{"error": "no title guessed"}, 404)
		return
	}
	q := strings.TrimSpace(title + " " + author)
	recs := s.resolver.SearchText(r.Context(), q, 5)
	writeJSON(w, map[string]any{"title": title, "author": author, "results": recs}, 200)
}
