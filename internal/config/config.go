package config

import (
	"log"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "MORNING_BYTE_CONFIG"
	kindleEmailEnv  = "KINDLE_EMAIL"
	senderEmailEnv  = "SENDER_EMAIL"
	smtpHostEnv     = "SMTP_HOST"
	smtpUserEnv     = "SMTP_USER"
	smtpPasswordEnv = "SMTP_PASSWORD"
)

// Config holds high-level settings required across the application.
type Config struct {
	Sources    map[string]SourceConfig `yaml:"sources"`
	Enrichment EnrichmentConfig        `yaml:"enrichment"`
	Digest     DigestConfig            `yaml:"digest"`
	Delivery   DeliveryConfig          `yaml:"delivery"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// SourceConfig describes one configured news source. Absent fields stay at
// their zero values; a disabled source is skipped entirely by the fetcher.
type SourceConfig struct {
	Enabled    bool         `yaml:"enabled"`
	MaxItems   int          `yaml:"maxItems"`
	Subreddits []string     `yaml:"subreddits"` // reddit specific
	Feeds      []FeedConfig `yaml:"feeds"`      // rss specific
	Tags       []string     `yaml:"tags"`       // dev.to specific
}

// FeedConfig pairs a feed URL with its display name.
type FeedConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// SourceEntry is a configured source together with its registry name, in the
// order the fetcher should dispatch them.
type SourceEntry struct {
	Name   string
	Config SourceConfig
}

// EnrichmentConfig bounds the full-content fetch pass.
type EnrichmentConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxConcurrent  int  `yaml:"maxConcurrent"`
	TimeoutSeconds int  `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-request timeout for content fetches.
func (e EnrichmentConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// DigestConfig shapes the assembled document.
type DigestConfig struct {
	Title                 string `yaml:"title"`
	Subtitle              string `yaml:"subtitle"`
	MaxArticlesPerSection int    `yaml:"maxArticlesPerSection"`
	IncludeScores         bool   `yaml:"includeScores"`
	IncludeCommentsLink   bool   `yaml:"includeCommentsLink"`
}

// DeliveryConfig wires local output and Send-to-Kindle email.
type DeliveryConfig struct {
	OutputDir    string `yaml:"outputDir"`
	KeepDays     int    `yaml:"keepDays"`
	KindleEmail  string `yaml:"kindleEmail"`
	SenderEmail  string `yaml:"senderEmail"`
	SMTPHost     string `yaml:"smtpHost"`
	SMTPPort     int    `yaml:"smtpPort"`
	SMTPUser     string `yaml:"smtpUser"`
	SMTPPassword string `yaml:"smtpPassword"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// canonical dispatch order for the built-in sources; unknown names follow
// alphabetically so one run is reproducible from the same config.
var sourceOrder = []string{"hackernews", "reddit", "lobsters", "devto", "rss"}

// Entries returns the configured sources in canonical order.
func (c Config) Entries() []SourceEntry {
	entries := make([]SourceEntry, 0, len(c.Sources))
	taken := map[string]bool{}

	for _, name := range sourceOrder {
		if cfg, ok := c.Sources[name]; ok {
			entries = append(entries, SourceEntry{Name: name, Config: cfg})
			taken[name] = true
		}
	}

	var extras []string
	for name := range c.Sources {
		if !taken[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		entries = append(entries, SourceEntry{Name: name, Config: c.Sources[name]})
	}

	return entries
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyFloors()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(kindleEmailEnv); v != "" {
		c.Delivery.KindleEmail = v
	}
	if v := os.Getenv(senderEmailEnv); v != "" {
		c.Delivery.SenderEmail = v
	}
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Delivery.SMTPHost = v
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Delivery.SMTPUser = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Delivery.SMTPPassword = v
	}
}

func (c *Config) applyFloors() {
	if c.Enrichment.MaxConcurrent <= 0 {
		c.Enrichment.MaxConcurrent = 5
	}
	if c.Enrichment.TimeoutSeconds <= 0 {
		c.Enrichment.TimeoutSeconds = 15
	}
	if c.Digest.MaxArticlesPerSection <= 0 {
		c.Digest.MaxArticlesPerSection = 15
	}
	for name, src := range c.Sources {
		if src.MaxItems <= 0 {
			src.MaxItems = 10
			c.Sources[name] = src
		}
	}
}

func mergeConfig(base, override Config) Config {
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if override.Enrichment.MaxConcurrent != 0 {
		base.Enrichment.MaxConcurrent = override.Enrichment.MaxConcurrent
	}
	if override.Enrichment.TimeoutSeconds != 0 {
		base.Enrichment.TimeoutSeconds = override.Enrichment.TimeoutSeconds
	}
	base.Enrichment.Enabled = override.Enrichment.Enabled

	if override.Digest.Title != "" {
		base.Digest.Title = override.Digest.Title
	}
	if override.Digest.Subtitle != "" {
		base.Digest.Subtitle = override.Digest.Subtitle
	}
	if override.Digest.MaxArticlesPerSection != 0 {
		base.Digest.MaxArticlesPerSection = override.Digest.MaxArticlesPerSection
	}

	if override.Delivery.OutputDir != "" {
		base.Delivery.OutputDir = override.Delivery.OutputDir
	}
	if override.Delivery.KeepDays != 0 {
		base.Delivery.KeepDays = override.Delivery.KeepDays
	}
	if override.Delivery.KindleEmail != "" {
		base.Delivery.KindleEmail = override.Delivery.KindleEmail
	}
	if override.Delivery.SenderEmail != "" {
		base.Delivery.SenderEmail = override.Delivery.SenderEmail
	}
	if override.Delivery.SMTPHost != "" {
		base.Delivery.SMTPHost = override.Delivery.SMTPHost
	}
	if override.Delivery.SMTPPort != 0 {
		base.Delivery.SMTPPort = override.Delivery.SMTPPort
	}
	if override.Delivery.SMTPUser != "" {
		base.Delivery.SMTPUser = override.Delivery.SMTPUser
	}
	if override.Delivery.SMTPPassword != "" {
		base.Delivery.SMTPPassword = override.Delivery.SMTPPassword
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Sources: map[string]SourceConfig{
			"hackernews": {Enabled: true, MaxItems: 15},
			"reddit": {
				Enabled:    true,
				MaxItems:   10,
				Subreddits: []string{"programming", "technology", "MachineLearning", "LocalLLaMA"},
			},
			"lobsters": {Enabled: true, MaxItems: 10},
			"devto":    {Enabled: true, MaxItems: 10, Tags: []string{"python", "javascript", "ai"}},
			"rss": {
				Enabled:  true,
				MaxItems: 5,
				Feeds: []FeedConfig{
					{URL: "https://blog.pragmaticengineer.com/rss/", Name: "Pragmatic Engineer"},
					{URL: "https://simonwillison.net/atom/everything/", Name: "Simon Willison"},
					{URL: "https://www.joelonsoftware.com/feed/", Name: "Joel on Software"},
				},
			},
		},
		Enrichment: EnrichmentConfig{
			Enabled:        false,
			MaxConcurrent:  5,
			TimeoutSeconds: 15,
		},
		Digest: DigestConfig{
			Title:                 "Morning Byte",
			Subtitle:              "Your Daily Tech Digest",
			MaxArticlesPerSection: 15,
			IncludeScores:         true,
			IncludeCommentsLink:   true,
		},
		Delivery: DeliveryConfig{
			OutputDir: "./output",
			KeepDays:  7,
			SMTPHost:  "smtp.gmail.com",
			SMTPPort:  587,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
