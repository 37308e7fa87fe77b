package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                  string
	MongoURI              string
	MongoDatabase         string
	SurveyCollection      string
	ResponseCollection    string
	ApplicationCollection string
	VacanteCollection     string
	UserCollection        string
	CompanyCollection     string
	Timeout               time.Duration
	Timezone              string
	ServerLog             *log.Logger
	JWTConfigs            []JWTConfig
	JWTAudience           string
	AllowedOrigins        []string
	UploadDir             string
	UploadMaxBytes        int64
	UploadRatePerSecond   float64
	UploadRateBurst       int
	EnforceSurveyWindow   bool
	HiringPolicy          string
}

// WatchConfig configures cmd/pendingwatch.
type WatchConfig struct {
	BaseURL   string
	Token     string
	CompanyID string
	Schedule  string
	Timeout   time.Duration
	Log       *log.Logger
}

// loadDotEnv reads .env when present. Variables already set win.
func loadDotEnv(logger *log.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf(".env could not be loaded: %v", err)
	}
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	serverLog := log.New(os.Stdout, "[bolsatrabajo-api] ", log.LstdFlags|log.Lshortfile)
	loadDotEnv(serverLog)

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "bolsatrabajo-auth"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secret not configured. Set AUTH_JWT_SECRET.")
	}

	cfg := Config{
		Addr:                  envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:              envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:         envOrDefault("MONGO_DB", "bolsatrabajo"),
		SurveyCollection:      envOrDefault("SURVEY_COLLECTION", "surveys"),
		ResponseCollection:    envOrDefault("RESPONSE_COLLECTION", "survey_responses"),
		ApplicationCollection: envOrDefault("APPLICATION_COLLECTION", "applications"),
		VacanteCollection:     envOrDefault("VACANTE_COLLECTION", "vacantes"),
		UserCollection:        envOrDefault("USER_COLLECTION", "users"),
		CompanyCollection:     envOrDefault("COMPANY_COLLECTION", "companies"),
		Timeout:               envDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		Timezone:              envOrDefault("TIMEZONE", "America/Mexico_City"),
		ServerLog:             serverLog,
		JWTConfigs:            jwtConfigs,
		JWTAudience:           strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AllowedOrigins:        parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		UploadDir:             envOrDefault("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes:        envInt64("UPLOAD_MAX_BYTES", 5<<20),
		UploadRatePerSecond:   envFloat("UPLOAD_RATE_PER_SECOND", 5),
		UploadRateBurst:       int(envInt64("UPLOAD_RATE_BURST", 20)),
		EnforceSurveyWindow:   envBool("SURVEY_ENFORCE_WINDOW", true),
		HiringPolicy:          envOrDefault("SURVEY_HIRING_POLICY", "latest"),
	}

	cfg.ServerLog.Printf("loaded config: db=%q uploadDir=%q enforceWindow=%t hiringPolicy=%q", cfg.MongoDatabase, cfg.UploadDir, cfg.EnforceSurveyWindow, cfg.HiringPolicy)

	return cfg
}

// LoadWatch reads the pending-survey watcher settings.
func LoadWatch() WatchConfig {
	logger := log.New(os.Stdout, "[bolsatrabajo-pendingwatch] ", log.LstdFlags)
	loadDotEnv(logger)

	cfg := WatchConfig{
		BaseURL:   envOrDefault("PENDINGWATCH_API_URL", "http://localhost:8080"),
		Token:     strings.TrimSpace(os.Getenv("PENDINGWATCH_TOKEN")),
		CompanyID: strings.TrimSpace(os.Getenv("PENDINGWATCH_COMPANY_ID")),
		Schedule:  envOrDefault("PENDINGWATCH_SCHEDULE", "*/5 * * * *"),
		Timeout:   envDuration("PENDINGWATCH_TIMEOUT", 10*time.Second),
		Log:       logger,
	}
	if cfg.Token == "" {
		log.Fatal("PENDINGWATCH_TOKEN must be configured")
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
