package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/kajdahl/booklog/internal/config"
	"github.com/kajdahl/booklog/internal/db"
)

// EnsureFirstRun writes a default config when none exists, opens the
// database and runs migrations. Both paths get their directories
// created.
func EnsureFirstRun(ctx context.Context, cfgPath, dbPath string) (*config.Config, *db.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(cfgPath, defaultConfig(dbPath)); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	if dbPath != "" && dbPath != cfg.DB.Path {
		cfg.DB.Path = dbPath
		_ = config.Save(cfgPath, cfg)
	}

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	_ = database.PruneCache(ctx)

	return cfg, database, nil
}

func defaultConfig(dbPath string) *config.Config {
	c := &config.Config{}
	c.Debug = false
	c.HTTP.Listen = ":8080"
	c.DB.Path = dbPath
	c.Lookup.PreferredLanguage = "da"
	c.Lookup.CacheTTLHours = 168
	c.Retailer.MaxResults = 20
	return c
}
