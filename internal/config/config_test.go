package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundtrip(t *testing.T) {
	tdir := t.TempDir()
	path := filepath.Join(tdir, "config.yaml")

	cfg := &Config{}
	cfg.HTTP.Listen = ":9090"
	cfg.DB.Path = filepath.Join(tdir, "booklog.db")
	cfg.Lookup.PreferredLanguage = "da"
	cfg.Lookup.GoogleAPIKey = "gk"
	cfg.Lookup.CacheTTLHours = 48
	cfg.Retailer.MaxResults = 12

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("missing file: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.HTTP.Listen != cfg.HTTP.Listen || got.DB.Path != cfg.DB.Path {
		t.Fatalf("mismatch after load")
	}
	if got.Lookup.PreferredLanguage != "da" || got.Lookup.CacheTTLHours != 48 {
		t.Fatalf("lookup mismatch: %+v", got.Lookup)
	}
	if got.Retailer.MaxResults != 12 {
		t.Fatalf("retailer mismatch: %+v", got.Retailer)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tdir := t.TempDir()
	path := filepath.Join(tdir, "config.yaml")

	cfg := &Config{}
	cfg.Lookup.ISBNdbAPIKey = "from-file"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("BOOKLOG_ISBNDB_API_KEY", "from-env")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Lookup.ISBNdbAPIKey != "from-env" {
		t.Fatalf("env override lost: %q", got.Lookup.ISBNdbAPIKey)
	}
}
