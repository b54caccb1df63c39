package db

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/kajdahl/booklog/internal/book"
)

// Book is a library row: a resolved record plus the reader's own
// fields.
type Book struct {
	ID      int64     `json:"id"`
	AddedAt time.Time `json:"addedAt"`
	book.Record
	Rating   int    `json:"rating"`
	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status"`
	ReadDate string `json:"readDate,omitempty"`
}

const (
	StatusWishlist = "Wishlist"
	StatusReading  = "Reading"
	StatusFinished = "Finished"
)

const bookCols = `id, added_at, isbn, title, author, thumbnail, page_count,
published_date, publisher, categories, language, description, source,
rating, notes, status, read_date`

func (d *DB) AddBook(ctx context.Context, b *Book) (int64, error) {
	b.AddedAt = time.Now().UTC()
	if b.Status == "" {
		b.Status = StatusReading
	}
	res, err := d.sql.ExecContext(ctx, `
INSERT INTO books
(added_at, isbn, title, author, thumbnail, page_count, published_date, publisher, categories, language, description, source, rating, notes, status, read_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.AddedAt.Format(time.RFC3339Nano), b.ISBN, b.Title, b.Author, b.Thumbnail,
		b.PageCount, b.PublishedDate, b.Publisher, b.Categories, b.Language,
		b.Description, b.Source, b.Rating, b.Notes, b.Status, b.ReadDate,
	)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	b.ID = id
	return id, nil
}

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	var added string
	var isbn, author, thumb, pub, pubd, cats, lang, desc, src, notes, read sql.NullString
	if err := row.Scan(&b.ID, &added, &isbn, &b.Title, &author, &thumb, &b.PageCount,
		&pubd, &pub, &cats, &lang, &desc, &src, &b.Rating, &notes, &b.Status, &read); err != nil {
		return nil, err
	}
	b.AddedAt, _ = time.Parse(time.RFC3339Nano, added)
	b.ISBN = isbn.String
	b.Author = author.String
	b.Thumbnail = thumb.String
	b.PublishedDate = pubd.String
	b.Publisher = pub.String
	b.Categories = cats.String
	b.Language = lang.String
	b.Description = desc.String
	b.Source = src.String
	b.Notes = notes.String
	b.ReadDate = read.String
	return &b, nil
}

func (d *DB) GetBook(ctx context.Context, id int64) (*Book, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+bookCols+` FROM books WHERE id=?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// ListBooks returns rows newest first, optionally filtered by a text
// fragment (matched against title, author and isbn) and a minimum
// rating.
func (d *DB) ListBooks(ctx context.Context, filter string, minRating int) ([]Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE rating >= ?`
	args := []any{minRating}
	if filter != "" {
		q += ` AND (title LIKE ? OR author LIKE ? OR isbn LIKE ?)`
		pat := "%" + filter + "%"
		args = append(args, pat, pat, pat)
	}
	q += ` ORDER BY id DESC`
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateBook replaces every editable field of the row.
func (d *DB) UpdateBook(ctx context.Context, b *Book) error {
	return d.Exec(ctx, `
UPDATE books
SET isbn=?, title=?, author=?, thumbnail=?, page_count=?, published_date=?, publisher=?, categories=?, language=?, description=?, source=?, rating=?, notes=?, status=?, read_date=?
WHERE id=?`,
		b.ISBN, b.Title, b.Author, b.Thumbnail, b.PageCount, b.PublishedDate,
		b.Publisher, b.Categories, b.Language, b.Description, b.Source,
		b.Rating, b.Notes, b.Status, b.ReadDate, b.ID)
}

func (d *DB) DeleteBook(ctx context.Context, id int64) error {
	return d.Exec(ctx, `DELETE FROM books WHERE id=?`, id)
}

// ExportCSV streams the whole library as CSV.
func (d *DB) ExportCSV(ctx context.Context, w io.Writer) error {
	books, err := d.ListBooks(ctx, "", 0)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"isbn", "title", "author", "publisher", "published", "pages", "language", "rating", "status", "read_date", "notes"}); err != nil {
		return err
	}
	for _, b := range books {
		rec := []string{
			b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedDate,
			strconv.Itoa(b.PageCount), b.Language, strconv.Itoa(b.Rating),
			b.Status, b.ReadDate, b.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
