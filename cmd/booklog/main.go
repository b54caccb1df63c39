package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kajdahl/booklog/internal/bootstrap"
	"github.com/kajdahl/booklog/internal/httpapi"
	"github.com/kajdahl/booklog/internal/lookup"
	"github.com/kajdahl/booklog/internal/providers"
)

func main() {
	cfgPath := getenv("BOOKLOG_CONFIG_PATH", "/data/booklog.yaml")
	dbPath := getenv("BOOKLOG_DB_PATH", "/data/booklog.db")

	ctx := context.Background()
	cfg, database, err := bootstrap.EnsureFirstRun(ctx, cfgPath, dbPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer database.Close()

	google := providers.NewGoogleBooks(cfg.Lookup.GoogleAPIKey, cfg.Lookup.PreferredLanguage)
	isbndb := providers.NewISBNdb(cfg.Lookup.ISBNdbAPIKey)
	openlib := providers.NewOpenLibrary()
	saxo := providers.NewSaxo(google)
	web := providers.NewWebFallback(saxo)

	svc := lookup.NewService(google, isbndb, openlib, web, google, database)
	if h := cfg.Lookup.CacheTTLHours; h > 0 {
		svc.SetCacheTTL(time.Duration(h) * time.Hour)
	}
	if !isbndb.Enabled() {
		log.Printf("isbndb: no api key, adapter disabled")
	}

	srv := httpapi.NewServer(cfg, database, svc, saxo, nil, nil)
	srv.SetURLScraper(web)
	server := &http.Server{Addr: cfg.HTTP.Listen, Handler: srv.Router()}

	go func() {
		log.Printf("listening on %s", cfg.HTTP.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()
	_ = server.Shutdown(context.Background())
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
