package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NEWSLENS_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	redisAddrEnv    = "REDIS_ADDR"
	httpPortEnv     = "HTTP_PORT"
	logLevelEnv     = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Feed       FeedConfig       `yaml:"feed"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN keeps
// the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig describes the optional feed cache. Empty Addr disables it.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	CacheTTLSec int    `yaml:"cacheTtlSeconds"`
}

// SchedulerConfig defines when ingestion cycles run.
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

// FetchConfig bounds the concurrent fetch stage.
type FetchConfig struct {
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	Retries        int `yaml:"retries"`
	RetryBaseMs    int `yaml:"retryBaseMs"`
}

// Timeout returns the per-source fetch deadline.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RetryBase returns the first backoff step.
func (f FetchConfig) RetryBase() time.Duration {
	return time.Duration(f.RetryBaseMs) * time.Millisecond
}

// ClusteringConfig tunes the dedup engine. Thresholds are contracts
// fixed by the design; the numeric values are deployment-tunable.
type ClusteringConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	WindowHours         int     `yaml:"windowHours"`
	StalenessHours      int     `yaml:"stalenessHours"`
}

// Window returns the maximum publish-time spread inside one cluster.
func (c ClusteringConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// Staleness returns the quiet period after which a cluster freezes.
func (c ClusteringConfig) Staleness() time.Duration {
	return time.Duration(c.StalenessHours) * time.Hour
}

// ScoringConfig tunes trust weighting and bias bucketing.
type ScoringConfig struct {
	CredibilityWeight  float64 `yaml:"credibilityWeight"`
	FactualWeight      float64 `yaml:"factualWeight"`
	TransparencyWeight float64 `yaml:"transparencyWeight"`
	EditorialWeight    float64 `yaml:"editorialWeight"`

	// MixedDisagreement is the minimum political/emotional divergence
	// (with opposite signs) that yields the "mixed" bias bucket.
	MixedDisagreement float64 `yaml:"mixedDisagreement"`
}

// FeedConfig tunes feed assembly.
type FeedConfig struct {
	TrendingWindowHours int `yaml:"trendingWindowHours"`
	DefaultLimit        int `yaml:"defaultLimit"`
}

// TrendingWindow returns the recency window for the trending list.
func (f FeedConfig) TrendingWindow() time.Duration {
	return time.Duration(f.TrendingWindowHours) * time.Hour
}

// SourceConfig seeds one entry of the source registry.
type SourceConfig struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	FeedURL           string   `yaml:"feedUrl"`
	Kind              string   `yaml:"kind"`
	Category          string   `yaml:"category"`
	Country           string   `yaml:"country"`
	Lean              float64  `yaml:"lean"`
	Factuality        string   `yaml:"factuality"`
	TrustRating       float64  `yaml:"trustRating"`
	TransparencyScore float64  `yaml:"transparencyScore"`
	OwnershipType     string   `yaml:"ownershipType"`
	OwnershipParent   string   `yaml:"ownershipParent"`
	Subsidiaries      []string `yaml:"subsidiaries"`
	Active            bool     `yaml:"active"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.applyFloors()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(httpPortEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
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

// applyFloors keeps tunables inside sane operating ranges even when the
// file sets nonsense values.
func (c *Config) applyFloors() {
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = 5
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = 30
	}
	if c.Fetch.Retries <= 0 {
		c.Fetch.Retries = 3
	}
	if c.Fetch.RetryBaseMs <= 0 {
		c.Fetch.RetryBaseMs = 500
	}
	if c.Clustering.SimilarityThreshold <= 0 || c.Clustering.SimilarityThreshold > 1 {
		c.Clustering.SimilarityThreshold = 0.4
	}
	if c.Clustering.WindowHours <= 0 {
		c.Clustering.WindowHours = 48
	}
	if c.Clustering.StalenessHours <= 0 {
		c.Clustering.StalenessHours = 24
	}
	if c.Feed.DefaultLimit <= 0 {
		c.Feed.DefaultLimit = 20
	}
	if c.Feed.TrendingWindowHours <= 0 {
		c.Feed.TrendingWindowHours = 72
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server:    ServerConfig{Port: "8080"},
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Redis:     RedisConfig{Addr: "", CacheTTLSec: 300},
		Scheduler: SchedulerConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone, location: tz},
		Fetch: FetchConfig{
			Concurrency:    5,
			TimeoutSeconds: 30,
			Retries:        3,
			RetryBaseMs:    500,
		},
		Clustering: ClusteringConfig{
			SimilarityThreshold: 0.4,
			WindowHours:         48,
			StalenessHours:      24,
		},
		Scoring: ScoringConfig{
			CredibilityWeight:  0.40,
			FactualWeight:      0.25,
			TransparencyWeight: 0.20,
			EditorialWeight:    0.15,
			MixedDisagreement:  40,
		},
		Feed: FeedConfig{
			TrendingWindowHours: 72,
			DefaultLimit:        20,
		},
		Sources: []SourceConfig{
			{
				ID:                "bbc-world",
				Name:              "BBC News",
				FeedURL:           "https://feeds.bbci.co.uk/news/world/rss.xml",
				Kind:              "rss",
				Category:          "world",
				Country:           "GB",
				Lean:              -5,
				Factuality:        "high",
				TrustRating:       90,
				TransparencyScore: 85,
				OwnershipType:     "public",
				Active:            true,
			},
		},
	}
}
