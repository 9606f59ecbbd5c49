package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "MEDIA_CURATOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	anthropicModelEnv = "ANTHROPIC_MODEL"
	braveKeyEnv       = "BRAVE_SEARCH_API_KEY"
	smtpUserEnv       = "SMTP_USER"
	smtpPasswordEnv   = "SMTP_PASSWORD"
	newsletterURLEnv  = "NEWSLETTER_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig       `yaml:"logging"`
	Database   DatabaseConfig      `yaml:"database"`
	Scheduler  SchedulerConfig     `yaml:"scheduler"`
	Feeds      []FeedConfig        `yaml:"feeds"`
	Anthropic  AnthropicConfig     `yaml:"anthropic"`
	Search     SearchConfig        `yaml:"search"`
	Newsletter NewsletterConfig    `yaml:"newsletter"`
	Mail       MailConfig          `yaml:"mail"`
	Rules      RulesConfig         `yaml:"rules"`
	Resolver   ResolverConfig      `yaml:"resolver"`
	Learning   LearningConfig      `yaml:"learning"`
	Themes     map[string][]string `yaml:"themes"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for archive/feedback.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipeline should run. An empty cron
// expression means a single immediate run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FeedConfig describes one RSS feed to poll.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// AnthropicConfig defines how to contact the relevance/summarization model.
type AnthropicConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey"`
	APIVersion string `yaml:"apiVersion"`
}

// SearchConfig wires the Brave web-search fallback. An empty API key
// disables the search stage entirely.
type SearchConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
	MaxResults  int    `yaml:"maxResults"`
	QuerySuffix string `yaml:"querySuffix"`
}

// NewsletterConfig shapes the exported digest.
type NewsletterConfig struct {
	MinScore     int           `yaml:"minScore"`
	Region       string        `yaml:"region"`
	URL          string        `yaml:"url"`
	OutputDir    string        `yaml:"outputDir"`
	MaxPerFeed   int           `yaml:"maxPerFeed"`
	ScoreDelay   time.Duration `yaml:"scoreDelay"`
	SummaryDelay time.Duration `yaml:"summaryDelay"`
}

// MailConfig wires SMTP delivery of the digest notification.
type MailConfig struct {
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	From       string            `yaml:"from"`
	Recipients map[string]string `yaml:"recipients"`
}

// RulesConfig locates the declarative rule file.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ResolverConfig tunes the content-resolution fallback chain.
type ResolverConfig struct {
	MinDescriptionLen int `yaml:"minDescriptionLen"`
	MinFulltextLen    int `yaml:"minFulltextLen"`
	GoodFulltextLen   int `yaml:"goodFulltextLen"`
	MaxContentLen     int `yaml:"maxContentLen"`
}

// LearningConfig tunes feedback mining and rule generation.
type LearningConfig struct {
	WindowDays        int     `yaml:"windowDays"`
	MinKeywordSamples int     `yaml:"minKeywordSamples"`
	MinSourceSamples  int     `yaml:"minSourceSamples"`
	MinTotalFeedback  int     `yaml:"minTotalFeedback"`
	HighThreshold     float64 `yaml:"highThreshold"`
	LowThreshold      float64 `yaml:"lowThreshold"`
	StrongHigh        float64 `yaml:"strongHigh"`
	StrongLow         float64 `yaml:"strongLow"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
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
	cfg.bindTimezone()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}
	if len(cfg.Themes) == 0 {
		cfg.Themes = defaultThemes()
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.Anthropic.APIKey = v
	}

	if v := os.Getenv(anthropicModelEnv); v != "" {
		c.Anthropic.Model = v
	}

	if v := os.Getenv(braveKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Mail.Username = v
		if c.Mail.From == "" {
			c.Mail.From = v
		}
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}

	if v := os.Getenv(newsletterURLEnv); v != "" {
		c.Newsletter.URL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Anthropic.Endpoint != "" {
		base.Anthropic.Endpoint = override.Anthropic.Endpoint
	}
	if override.Anthropic.Model != "" {
		base.Anthropic.Model = override.Anthropic.Model
	}
	if override.Anthropic.APIKey != "" {
		base.Anthropic.APIKey = override.Anthropic.APIKey
	}
	if override.Anthropic.APIVersion != "" {
		base.Anthropic.APIVersion = override.Anthropic.APIVersion
	}

	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.QuerySuffix != "" {
		base.Search.QuerySuffix = override.Search.QuerySuffix
	}

	if override.Newsletter.MinScore > 0 {
		base.Newsletter.MinScore = override.Newsletter.MinScore
	}
	if override.Newsletter.Region != "" {
		base.Newsletter.Region = override.Newsletter.Region
	}
	if override.Newsletter.URL != "" {
		base.Newsletter.URL = override.Newsletter.URL
	}
	if override.Newsletter.OutputDir != "" {
		base.Newsletter.OutputDir = override.Newsletter.OutputDir
	}
	if override.Newsletter.MaxPerFeed > 0 {
		base.Newsletter.MaxPerFeed = override.Newsletter.MaxPerFeed
	}
	if override.Newsletter.ScoreDelay > 0 {
		base.Newsletter.ScoreDelay = override.Newsletter.ScoreDelay
	}
	if override.Newsletter.SummaryDelay > 0 {
		base.Newsletter.SummaryDelay = override.Newsletter.SummaryDelay
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port > 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}
	if len(override.Mail.Recipients) > 0 {
		base.Mail.Recipients = override.Mail.Recipients
	}

	if override.Rules.Path != "" {
		base.Rules = override.Rules
	}

	if override.Resolver.MinDescriptionLen > 0 {
		base.Resolver.MinDescriptionLen = override.Resolver.MinDescriptionLen
	}
	if override.Resolver.MinFulltextLen > 0 {
		base.Resolver.MinFulltextLen = override.Resolver.MinFulltextLen
	}
	if override.Resolver.GoodFulltextLen > 0 {
		base.Resolver.GoodFulltextLen = override.Resolver.GoodFulltextLen
	}
	if override.Resolver.MaxContentLen > 0 {
		base.Resolver.MaxContentLen = override.Resolver.MaxContentLen
	}

	if override.Learning.WindowDays > 0 {
		base.Learning.WindowDays = override.Learning.WindowDays
	}
	if override.Learning.MinKeywordSamples > 0 {
		base.Learning.MinKeywordSamples = override.Learning.MinKeywordSamples
	}
	if override.Learning.MinSourceSamples > 0 {
		base.Learning.MinSourceSamples = override.Learning.MinSourceSamples
	}
	if override.Learning.MinTotalFeedback > 0 {
		base.Learning.MinTotalFeedback = override.Learning.MinTotalFeedback
	}
	if override.Learning.HighThreshold > 0 {
		base.Learning.HighThreshold = override.Learning.HighThreshold
	}
	if override.Learning.LowThreshold > 0 {
		base.Learning.LowThreshold = override.Learning.LowThreshold
	}
	if override.Learning.StrongHigh > 0 {
		base.Learning.StrongHigh = override.Learning.StrongHigh
	}
	if override.Learning.StrongLow > 0 {
		base.Learning.StrongLow = override.Learning.StrongLow
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}
	if len(override.Themes) > 0 {
		base.Themes = override.Themes
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		Anthropic: AnthropicConfig{
			Endpoint:   "https://api.anthropic.com/v1/messages",
			Model:      "claude-sonnet-4-20250514",
			APIVersion: "2023-06-01",
		},
		Search: SearchConfig{
			Endpoint:    "https://api.search.brave.com/res/v1/web/search",
			MaxResults:  3,
			QuerySuffix: "medien tv nachrichten",
		},
		Newsletter: NewsletterConfig{
			MinScore:     7,
			Region:       "DE",
			URL:          "https://example.org/media-newsletter",
			OutputDir:    ".",
			MaxPerFeed:   20,
			ScoreDelay:   500 * time.Millisecond,
			SummaryDelay: time.Second,
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Rules: RulesConfig{Path: "rules.json"},
		Resolver: ResolverConfig{
			MinDescriptionLen: 150,
			MinFulltextLen:    200,
			GoodFulltextLen:   500,
			MaxContentLen:     3000,
		},
		Learning: LearningConfig{
			WindowDays:        30,
			MinKeywordSamples: 3,
			MinSourceSamples:  6,
			MinTotalFeedback:  10,
			HighThreshold:     0.75,
			LowThreshold:      0.25,
			StrongHigh:        0.90,
			StrongLow:         0.10,
		},
		Feeds: []FeedConfig{
			{Name: "DWDL", URL: "https://www.dwdl.de/rss/allethemen.xml"},
			{Name: "Horizont Medien", URL: "https://www.horizont.net/news/feed/medien/"},
			{Name: "Variety", URL: "https://variety.com/feed/"},
			{Name: "Deadline", URL: "https://deadline.com/feed/"},
			{Name: "Hollywood Reporter", URL: "https://www.hollywoodreporter.com/feed/"},
			{Name: "Guardian Media", URL: "https://www.theguardian.com/media/rss"},
		},
		Themes: defaultThemes(),
	}
}

func defaultThemes() map[string][]string {
	return map[string][]string{
		"streaming":  {"netflix", "streaming", "prime video", "disney+", "wow", "joyn", "mediathek"},
		"ratings":    {"quote", "quoten", "rating", "marktanteil", "einschaltquote", "reichweite"},
		"personnel":  {"intendant", "geschäftsführer", "chefredakteur", "personalie", "wechselt", "verlässt"},
		"awards":     {"emmy", "grimme", "oscar", "preis", "award", "auszeichnung"},
		"production": {"produktion", "dreh", "format", "staffel", "serie", "show", "pilot"},
	}
}
