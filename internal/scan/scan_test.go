package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubDecoder struct{ payloads []string }

func (d stubDecoder) Decode(ctx context.Context, image []byte) ([]string, error) {
	return d.payloads, nil
}

func TestISBNFromImage(t *testing.T) {
	dec := stubDecoder{payloads: []string{"5012345678900", "978-0-439-02352-8"}}
	got := ISBNFromImage(context.Background(), dec, []byte("img"))
	assert.Equal(t, "9780439023528", got, "Bookland payload wins over the price EAN")

	got = ISBNFromImage(context.Background(), stubDecoder{payloads: []string{"5012345678900"}}, []byte("img"))
	assert.Equal(t, "5012345678900", got, "a lone valid EAN is still returned")

	assert.Empty(t, ISBNFromImage(context.Background(), stubDecoder{}, []byte("img")))
	assert.Empty(t, ISBNFromImage(context.Background(), nil, []byte("img")))
}

func TestGuessTitleAuthor(t *testing.T) {
	text := "PENGUIN CLASSICS\nThe Count of Monte Cristo\nby Alexandre Dumas\n$12.99"
	title, author := GuessTitleAuthor(text)
	assert.Equal(t, "The Count of Monte Cristo", title)
	assert.Equal(t, "Alexandre Dumas", author)
}

func TestGuessTitleAuthorNameLine(t *testing.T) {
	text := "THE HUNGER GAMES TRILOGY\nSuzanne Collins\n51299"
	title, author := GuessTitleAuthor(text)
	assert.Equal(t, "THE HUNGER GAMES TRILOGY", title)
	assert.Equal(t, "Suzanne Collins", author)
}

func TestGuessTitleAuthorEmpty(t *testing.T) {
	title, author := GuessTitleAuthor("")
	assert.Empty(t, title)
	assert.Empty(t, author)
}
