package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug bool `yaml:"debug"`
	HTTP  struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	Lookup struct {
		// Preferred result language for searches, 2-letter code.
		PreferredLanguage string `yaml:"preferred_language"`
		GoogleAPIKey      string `yaml:"google_api_key" env:"BOOKLOG_GOOGLE_API_KEY"`
		ISBNdbAPIKey      string `yaml:"isbndb_api_key" env:"BOOKLOG_ISBNDB_API_KEY"`
		CacheTTLHours     int    `yaml:"cache_ttl_hours"`
	} `yaml:"lookup"`

	Retailer struct {
		MaxResults int `yaml:"max_results"`
	} `yaml:"retailer"`
}

// Load reads the yaml file and then applies env overrides, so secrets
// can stay out of the file entirely.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
