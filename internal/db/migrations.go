package db

import "context"

func (d *DB) Migrate(ctx context.Context) error {
	if err := d.Exec(ctx, `
CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  added_at TEXT NOT NULL,
  isbn TEXT,
  title TEXT NOT NULL,
  author TEXT,
  thumbnail TEXT,
  page_count INTEGER NOT NULL DEFAULT 0,
  published_date TEXT,
  publisher TEXT,
  categories TEXT,
  language TEXT,
  description TEXT,
  source TEXT,
  rating INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'Finished',
  read_date TEXT
);`); err != nil {
		return err
	}

	return d.Exec(ctx, `
CREATE TABLE IF NOT EXISTS lookup_cache (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cache_key TEXT UNIQUE NOT NULL,
  data TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  expires_at TEXT NOT NULL
);`)
}
