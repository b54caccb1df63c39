package util

import "testing"

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", " ", "a", "b"); got != "a" {
		t.Fatalf("want a got %q", got)
	}
	if got := FirstNonEmpty("", "  "); got != "" {
		t.Fatalf("want empty got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Den   lille\tPrins ": "Den lille Prins",
		"Tom &amp; Jerry":       "Tom & Jerry",
		"":                      "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("%q => %q (want %q)", in, got, want)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("Saint-Exupéry"); got != "saint-exupery" {
		t.Fatalf("fold: %q", got)
	}
	if got := Fold("HELLE Helle"); got != "helle helle" {
		t.Fatalf("fold: %q", got)
	}
}

func TestSecureURL(t *testing.T) {
	if got := SecureURL("http://img.example/x.jpg"); got != "https://img.example/x.jpg" {
		t.Fatalf("got %q", got)
	}
	if got := SecureURL("ftp://nope"); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := SecureURL("https://"); got != "" {
		t.Fatalf("got %q", got)
	}
}
