package book

import "testing"

func TestMergeMissingFillOnly(t *testing.T) {
	a := Record{Author: "X", Source: SourceSaxo}
	b := Record{Title: "Y", Author: "Z", PageCount: 300, Source: SourceGoogle}
	a.MergeMissing(&b)
	if a.Title != "Y" {
		t.Fatalf("title not filled: %q", a.Title)
	}
	if a.Author != "X" {
		t.Fatalf("populated author overwritten: %q", a.Author)
	}
	if a.PageCount != 300 {
		t.Fatalf("page count not filled: %d", a.PageCount)
	}
	if a.Source != SourceSaxo {
		t.Fatalf("source changed: %q", a.Source)
	}
}

func TestMergeMissingNil(t *testing.T) {
	a := Record{Title: "T"}
	a.MergeMissing(nil)
	if a.Title != "T" {
		t.Fatalf("record mutated by nil merge")
	}
}

func TestFallbackKey(t *testing.T) {
	r := Record{Title: "  Den  lille Prins ", Author: "Antoine de Saint-Exupéry"}
	want := "den lille prins|antoine de saint-exupéry"
	if got := r.FallbackKey(); got != want {
		t.Fatalf("key=%q want %q", got, want)
	}
}
