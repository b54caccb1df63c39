package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "9780439023528", Clean("978-0-439-02352-8"))
	assert.Equal(t, "043902352X", Clean(" 0-439-02352-x "))
	assert.Equal(t, "", Clean("no digits here"))
}

func TestValidISBN13(t *testing.T) {
	valid := []string{
		"9780140449136",
		"9780385504201",
		"9780439023528",
		"9781529157468",
		"9780306406157",
		"9791037501127",
	}
	for _, s := range valid {
		assert.Truef(t, ValidISBN13(s), "want valid: %s", s)
	}
	invalid := []string{
		"9780140449137",
		"9780439023529",
		"1234567890123",
		"978014044913",
		"97801404491361",
		"97801404491ab",
		"",
	}
	for _, s := range invalid {
		assert.Falsef(t, ValidISBN13(s), "want invalid: %s", s)
	}
}

func TestValidISBN10(t *testing.T) {
	valid := []string{"0306406152", "0439023521", "080442957X"}
	for _, s := range valid {
		assert.Truef(t, ValidISBN10(s), "want valid: %s", s)
	}
	invalid := []string{"0306406153", "030640615", "X306406152", "030640615x", ""}
	for _, s := range invalid {
		assert.Falsef(t, ValidISBN10(s), "want invalid: %s", s)
	}
}

func TestToISBN10(t *testing.T) {
	// Round-trip: the ISBN-10 body is the middle nine digits of the 13.
	got := ToISBN10("9780439023528")
	require.Len(t, got, 10)
	assert.Equal(t, "043902352", got[:9])
	assert.True(t, ValidISBN10(got))

	assert.Equal(t, "0306406152", ToISBN10("9780306406157"))

	// 979 Bookland codes have no ISBN-10 form.
	assert.Equal(t, "", ToISBN10("9791037501127"))
	// Invalid input is rejected outright.
	assert.Equal(t, "", ToISBN10("9780140449137"))
	assert.Equal(t, "", ToISBN10("0306406152"))
}

func TestToISBN10RemainderTen(t *testing.T) {
	// Body 043942089 has weighted sum 230, 230 mod 11 == 10 -> X.
	got := ToISBN10("9780439420891")
	require.Equal(t, "043942089X", got)
	assert.True(t, ValidISBN10(got))
}

func TestExtractFromText(t *testing.T) {
	cases := map[string]string{
		"978-0-439-02352-8 51299":                   "9780439023528", // dashed EAN + price add-on
		"ISBN 9780140449136 kr 129,95":              "9780140449136",
		"gtin 1234567890123 then 9780385504201 too": "9780385504201", // prefers Bookland prefix
		"no isbn in sight":                          "",
		"9780140449137":                             "", // fails checksum
		"":                                          "",
	}
	for in, want := range cases {
		assert.Equalf(t, want, ExtractFromText(in), "input %q", in)
	}
}

func TestYear(t *testing.T) {
	assert.Equal(t, "1994", Year("1. udgave 1994"))
	assert.Equal(t, "2021", Year("2021-05-04"))
	assert.Equal(t, "", Year("udateret"))
}
