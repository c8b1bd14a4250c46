package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	GithubToken            string
	GithubFetchTimeout     time.Duration
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIMaxTokens        int
	OpenAITemperature      float64
	EvaluationRunTimeout   time.Duration
	SearchCacheTTL         time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKILLPROOF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SkillProof API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("github.fetch_timeout", "30s")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 2000)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("evaluation.run_timeout", "60s")
	v.SetDefault("search.cache_ttl", "5m")
	v.SetDefault("cloudinary.folder", "skillproof/submissions")

	fetchTimeout, err := parseDuration(v.GetString("github.fetch_timeout"), "github fetch timeout")
	if err != nil {
		return Config{}, err
	}
	runTimeout, err := parseDuration(v.GetString("evaluation.run_timeout"), "evaluation run timeout")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v.GetString("search.cache_ttl"), "search cache ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		GithubToken:            v.GetString("github.token"),
		GithubFetchTimeout:     fetchTimeout,
		OpenAIAPIKey:           v.GetString("openai.api_key"),
		OpenAIModel:            v.GetString("openai.model"),
		OpenAIMaxTokens:        v.GetInt("openai.max_tokens"),
		OpenAITemperature:      v.GetFloat64("openai.temperature"),
		EvaluationRunTimeout:   runTimeout,
		SearchCacheTTL:         cacheTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.OpenAIMaxTokens <= 0 {
		cfg.OpenAIMaxTokens = 2000
	}

	return cfg, nil
}

func parseDuration(raw, label string) (time.Duration, error) {
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", label, err)
	}
	return parsed, nil
}
