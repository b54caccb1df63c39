package book

import "strings"

// Source tags identifying which provider produced a record.
const (
	SourceGoogle            = "google"
	SourceGoogleSearch      = "google-search"
	SourceOpenLibrary       = "openlibrary"
	SourceOpenLibrarySearch = "openlibrary-search"
	SourceISBNdb            = "isbndb"
	SourceSaxo              = "web(saxo)"
	SourceAdlibris          = "web(adlibris)"
	SourceIMusic            = "web(imusic)"
	SourceWebGeneric        = "web(generic)"
	SourceManual            = "manual"
	SourceCoverOCR          = "cover-ocr"
)

// Record is the canonical metadata shape every adapter normalizes into.
// Absence of data is an empty string or zero, never a sentinel.
type Record struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"` // comma-joined list of names
	Thumbnail     string `json:"thumbnail"`
	PageCount     int    `json:"page_count"`
	PublishedDate string `json:"published_date"`
	Publisher     string `json:"publisher"`
	Categories    string `json:"categories"`
	Language      string `json:"language"`
	Description   string `json:"description"`
	Source        string `json:"source"`
}

// MergeMissing fills empty fields of r from e. Populated fields are
// never overwritten, and Source keeps the original provenance.
func (r *Record) MergeMissing(e *Record) {
	if e == nil {
		return
	}
	if r.ISBN == "" {
		r.ISBN = e.ISBN
	}
	if r.Title == "" {
		r.Title = e.Title
	}
	if r.Author == "" {
		r.Author = e.Author
	}
	if r.Thumbnail == "" {
		r.Thumbnail = e.Thumbnail
	}
	if r.PageCount == 0 {
		r.PageCount = e.PageCount
	}
	if r.PublishedDate == "" {
		r.PublishedDate = e.PublishedDate
	}
	if r.Publisher == "" {
		r.Publisher = e.Publisher
	}
	if r.Categories == "" {
		r.Categories = e.Categories
	}
	if r.Language == "" {
		r.Language = e.Language
	}
	if r.Description == "" {
		r.Description = e.Description
	}
}

// FallbackKey is the dedupe key for records without a trustworthy ISBN:
// lowercased, whitespace-normalized "title|author".
func (r *Record) FallbackKey() string {
	return normKey(r.Title) + "|" + normKey(r.Author)
}

func normKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
