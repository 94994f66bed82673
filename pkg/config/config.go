package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Connection policies understood by the document store manager.
const (
	PolicyPerCall = "per_call"
	PolicyCached  = "cached"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Mongo      MongoConfig
	Redis      RedisConfig
	Cache      CacheConfig
	CORS       CORSConfig
	Log        LogConfig
	Submission SubmissionConfig
	Surveys    SurveysConfig
	RateLimit  RateLimitConfig
}

// MongoConfig describes the document store connection.
type MongoConfig struct {
	URI                 string
	Database            string
	Policy              string
	ConnectTimeout      time.Duration
	LettersCollection   string
	SurveysCollection   string
	ResponsesCollection string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles listing caches backed by Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SubmissionConfig configures the client-side letter submission chain.
type SubmissionConfig struct {
	PrimaryURL   string
	SecondaryURL string
	Timeout      time.Duration
}

// SurveysConfig tunes protected survey handling.
type SurveysConfig struct {
	BcryptCost int
}

// RateLimitConfig throttles write and verification endpoints per client IP.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	TTL               time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Mongo = MongoConfig{
		URI:                 v.GetString("MONGO_URI"),
		Database:            v.GetString("MONGO_DATABASE"),
		Policy:              normalizePolicy(v.GetString("MONGO_CONNECTION_POLICY")),
		ConnectTimeout:      parseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"), 10*time.Second),
		LettersCollection:   v.GetString("MONGO_LETTERS_COLLECTION"),
		SurveysCollection:   v.GetString("MONGO_SURVEYS_COLLECTION"),
		ResponsesCollection: v.GetString("MONGO_RESPONSES_COLLECTION"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 2*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Submission = SubmissionConfig{
		PrimaryURL:   v.GetString("SUBMIT_PRIMARY_URL"),
		SecondaryURL: v.GetString("SUBMIT_SECONDARY_URL"),
		Timeout:      parseDuration(v.GetString("SUBMIT_TIMEOUT"), 5*time.Second),
	}

	cfg.Surveys = SurveysConfig{
		BcryptCost: v.GetInt("SURVEY_BCRYPT_COST"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:           v.GetBool("ENABLE_RATE_LIMIT"),
		RequestsPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Burst:             v.GetInt("RATE_LIMIT_BURST"),
		TTL:               parseDuration(v.GetString("RATE_LIMIT_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "gratitude")
	v.SetDefault("MONGO_CONNECTION_POLICY", PolicyCached)
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("MONGO_LETTERS_COLLECTION", "letters")
	v.SetDefault("MONGO_SURVEYS_COLLECTION", "surveys")
	v.SetDefault("MONGO_RESPONSES_COLLECTION", "survey_responses")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "2m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SUBMIT_PRIMARY_URL", "http://localhost:8080/api/letters")
	v.SetDefault("SUBMIT_SECONDARY_URL", "http://localhost:8080/letters")
	v.SetDefault("SUBMIT_TIMEOUT", "5s")

	v.SetDefault("SURVEY_BCRYPT_COST", 10)

	v.SetDefault("ENABLE_RATE_LIMIT", true)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_TTL", "5m")
}

func normalizePolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PolicyPerCall, "per-call", "percall":
		return PolicyPerCall
	default:
		return PolicyCached
	}
}

// isMissingFile reports an absent .env: with SetConfigFile viper returns the
// raw *fs.PathError instead of ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
