package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"curator/internal/keywords"
)

// Config is the application's configuration model: scoring and ranking
// constants, model backends, schedules and storage.
type Config struct {
	Scoring    ScoringConfig    `yaml:"scoring"`
	Ranking    RankingConfig    `yaml:"ranking"`
	RabbitHole RabbitHoleConfig `yaml:"rabbitHole"`
	StopWords  []string         `yaml:"stopWords"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	LLM        LLMConfig        `yaml:"llm"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	// IANA zone used to decide calendar days for the binge cap. Empty means the host zone.
	Timezone string `yaml:"timezone"`
}

type ScoringConfig struct {
	DailySessionCap    int `yaml:"dailySessionCap" validate:"gte=1"`
	MaxFrequencyPoints int `yaml:"maxFrequencyPoints" validate:"gte=0,lte=100"`
	DecayMonths        int `yaml:"decayMonths" validate:"gte=1"`
}

type RankingConfig struct {
	SemanticMatchThreshold  float64 `yaml:"semanticMatchThreshold" validate:"gte=0,lte=1"`
	TopCreators             int     `yaml:"topCreators" validate:"gte=1"`
	MaxResults              int     `yaml:"maxResults" validate:"gte=1"`
	BridgeTopics            int     `yaml:"bridgeTopics" validate:"gte=2"`
	RabbitHoleSemanticBoost float64 `yaml:"rabbitHoleSemanticBoost" validate:"gte=0"`
	// Parallel embedding lookups during a ranking pass.
	Concurrency int `yaml:"concurrency" validate:"gte=1,lte=32"`
}

type RabbitHoleConfig struct {
	BoostFactor     float64 `yaml:"boostFactor" validate:"gte=0"`
	DurationMinutes int     `yaml:"durationMinutes" validate:"gte=1"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider" validate:"oneof=ollama openai none"`
	Model     string `yaml:"model"`
	Host      string `yaml:"host"`
	Dimension int    `yaml:"dimension" validate:"gte=0"`
	SyncCount int    `yaml:"syncCount" validate:"gte=1"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" validate:"oneof=ollama openai none"` // "ollama", "openai" or "none"
	Model    string `yaml:"model"`
	Host     string `yaml:"host"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
}

type ScheduleConfig struct {
	ScoreUpdateInterval time.Duration `yaml:"scoreUpdateInterval" validate:"gte=1m"`
	FeedPollInterval    time.Duration `yaml:"feedPollInterval" validate:"gte=1m"`
	FeedPollCount       int           `yaml:"feedPollCount" validate:"gte=1"`
}

type EnrichmentConfig struct {
	MaxPerHour int `yaml:"maxPerHour" validate:"gte=0"`
	MaxPerDay  int `yaml:"maxPerDay" validate:"gte=0"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath" validate:"required"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Scoring:    ScoringConfig{DailySessionCap: 3, MaxFrequencyPoints: 30, DecayMonths: 5},
		Ranking:    RankingConfig{SemanticMatchThreshold: 0.4, TopCreators: 10, MaxResults: 5, BridgeTopics: 5, RabbitHoleSemanticBoost: 0.5, Concurrency: 4},
		RabbitHole: RabbitHoleConfig{BoostFactor: 10, DurationMinutes: 30},
		StopWords:  append([]string(nil), keywords.DefaultStopWords...),
		Embedding:  EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text", SyncCount: 100},
		LLM:        LLMConfig{Provider: "ollama", Model: "qwen3:8b"},
		Schedule:   ScheduleConfig{ScoreUpdateInterval: 4 * time.Hour, FeedPollInterval: 24 * time.Hour, FeedPollCount: 50},
		Enrichment: EnrichmentConfig{MaxPerHour: 10, MaxPerDay: 50},
		Storage:    StorageConfig{DBPath: "./curator.db"},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
	}
}

// ResolveEnv fills in config fields from environment variables. Env wins for
// the database path, hosts, log level and metrics address; keys only fill blanks.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("CURATOR_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("CURATOR_OLLAMA_HOST"); v != "" {
		c.Embedding.Host = v
		c.LLM.Host = v
	}
	if v := os.Getenv("CURATOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	key := os.Getenv("OPENAI_API_KEY")
	if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = key
	}
	if c.Embedding.APIKey == "" && c.Embedding.Provider == "openai" {
		c.Embedding.APIKey = key
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks value ranges and enums.
func (c Config) Validate() error {
	validateOnce.Do(func() { validate = validator.New(validator.WithRequiredStructEnabled()) })
	err := validate.Struct(c)
	if err == nil {
		if c.Timezone != "" {
			if _, err := time.LoadLocation(c.Timezone); err != nil {
				return fmt.Errorf("config: timezone: %w", err)
			}
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

// Location is the zone for calendar-day grouping.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads YAML config from path on top of Default, then applies env overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default with env applied.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ResolveEnv()
		return cfg, nil
	}
	return cfg, err
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
