package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Asset     AssetConfig     `yaml:"asset"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	News      NewsConfig      `yaml:"news"`
	LLM       LLMConfig       `yaml:"llm"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Warm      WarmConfig      `yaml:"warm"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the backing store. Path is used by sqlite, DSN by postgres.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	Path   string `yaml:"path" validate:"required_if=Driver sqlite"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver postgres"`
}

type AssetConfig struct {
	ID       string `yaml:"id" validate:"required"`
	Symbol   string `yaml:"symbol" validate:"required"`
	Currency string `yaml:"currency" validate:"required"`
}

type CoinGeckoConfig struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	APIKey            string        `yaml:"api_key"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"min=1"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries" validate:"min=0"`
}

type NewsConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	APIKey      string        `yaml:"api_key"`
	Query       string        `yaml:"query" validate:"required"`
	Language    string        `yaml:"language"`
	MaxArticles int           `yaml:"max_articles" validate:"min=1,max=100"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider" validate:"oneof=ollama openai claude gemini"`
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model" validate:"required"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens" validate:"min=0"`
}

type AnalysisConfig struct {
	DateLayout       string `yaml:"date_layout" validate:"required"`
	VolatilityWindow int    `yaml:"volatility_window" validate:"min=2"`
	MaxHeadlines     int    `yaml:"max_headlines" validate:"min=1"`
}

type SentimentConfig struct {
	PositiveThreshold float64 `yaml:"positive_threshold" validate:"gtfield=NegativeThreshold,lte=1"`
	NegativeThreshold float64 `yaml:"negative_threshold" validate:"gte=0"`
}

// WarmConfig schedules a recurring analysis of the trailing LookbackDays.
// An empty Cron disables the job.
type WarmConfig struct {
	Cron         string `yaml:"cron"`
	LookbackDays int    `yaml:"lookback_days" validate:"min=1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8000},
		Database: DatabaseConfig{Driver: "sqlite", Path: "./data/solana_news.db"},
		Asset:    AssetConfig{ID: "solana", Symbol: "SOL", Currency: "usd"},
		CoinGecko: CoinGeckoConfig{
			BaseURL:           "https://api.coingecko.com/api/v3",
			RequestsPerMinute: 4,
			Timeout:           30 * time.Second,
			MaxRetries:        3,
		},
		News: NewsConfig{
			BaseURL:     "https://gnews.io/api/v4",
			Query:       "solana",
			Language:    "en",
			MaxArticles: 10,
			Timeout:     30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "ollama",
			Model:     "mistral",
			Timeout:   2 * time.Minute,
			MaxTokens: 1024,
		},
		Analysis:  AnalysisConfig{DateLayout: "2006-01-02", VolatilityWindow: 5, MaxHeadlines: 10},
		Sentiment: SentimentConfig{PositiveThreshold: 0.6, NegativeThreshold: 0.4},
		Warm:      WarmConfig{LookbackDays: 30},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString("HOST", &cfg.Server.Host)
	setInt("PORT", &cfg.Server.Port)

	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_PATH", &cfg.Database.Path)
	setString("DATABASE_URL", &cfg.Database.DSN)

	setString("ASSET_ID", &cfg.Asset.ID)
	setString("COINGECKO_API_URL", &cfg.CoinGecko.BaseURL)
	setString("COINGECKO_API_KEY", &cfg.CoinGecko.APIKey)

	setString("NEWS_API_URL", &cfg.News.BaseURL)
	setString("NEWS_API_KEY", &cfg.News.APIKey)
	setString("NEWS_QUERY", &cfg.News.Query)

	setString("LLM_PROVIDER", &cfg.LLM.Provider)
	setString("LLM_ENDPOINT", &cfg.LLM.Endpoint)
	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	setString("LLM_MODEL", &cfg.LLM.Model)

	setString("DATE_LAYOUT", &cfg.Analysis.DateLayout)
	setString("WARM_CRON", &cfg.Warm.Cron)
	setInt("DEFAULT_LOOKBACK_DAYS", &cfg.Warm.LookbackDays)

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
}

func setString(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

func setInt(key string, dst *int) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*dst = intValue
		}
	}
}
