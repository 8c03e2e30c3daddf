package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Keycloak    KeycloakConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Attachments AttachmentsConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SeedDocuments lists "locale/slug" documents created at startup when
	// running on in-memory repositories.
	SeedDocuments []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int

	// BlacklistPrefix is the key prefix of revoked access tokens written by
	// the identity service.
	BlacklistPrefix string
}

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// StorageConfig selects the blob backend: Root is used by "filesystem",
// the MinIO fields by "minio".
type StorageConfig struct {
	Backend string // "minio" | "filesystem"
	Root    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
}

// AttachmentsConfig describes where attachment files are served from and
// what uploads are accepted.
type AttachmentsConfig struct {
	// Domain is the main site domain allowed to frame streamed files.
	Domain string
	// Host and Origin identify the untrusted attachments host.
	Host               string
	Origin             string
	UseSSL             bool
	TrustForwardedHost bool
	MaxUploadSize      int64
	AllowedTypes       []string
	LoginURL           string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5020")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("MONGODB_DATABASE", "wiki")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_BLACKLIST_PREFIX", "blacklist:access:")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("STORAGE_BACKEND", "filesystem")
	viper.SetDefault("STORAGE_ROOT", "./data/attachments")
	viper.SetDefault("MINIO_BUCKET", "wiki-attachments")
	viper.SetDefault("DOMAIN", "localhost:5020")
	viper.SetDefault("ATTACHMENT_USE_SSL", true)
	viper.SetDefault("ATTACHMENT_MAX_UPLOAD_SIZE", 100*1024*1024)
	viper.SetDefault("ATTACHMENT_ALLOWED_TYPES", "image/gif,image/jpeg,image/png,image/svg+xml,image/vnd.adobe.photoshop,text/html,text/plain,application/pdf")
	viper.SetDefault("LOGIN_URL", "/users/signin")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:          viper.GetString("SERVER_PORT"),
			Host:          viper.GetString("SERVER_HOST"),
			Environment:   viper.GetString("SERVER_ENVIRONMENT"),
			Debug:         viper.GetBool("DEBUG"),
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  10 * time.Minute,
			SeedDocuments: strings.Fields(strings.ReplaceAll(viper.GetString("SEED_DOCUMENTS"), ",", " ")),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:            viper.GetString("REDIS_HOST"),
			Port:            viper.GetString("REDIS_PORT"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              0,
			BlacklistPrefix: viper.GetString("REDIS_BLACKLIST_PREFIX"),
		},
		Keycloak: KeycloakConfig{
			URL:          viper.GetString("KEYCLOAK_URL"),
			Realm:        viper.GetString("KEYCLOAK_REALM"),
			ClientID:     viper.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: viper.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(viper.GetString("STORAGE_BACKEND")),
			Root:    viper.GetString("STORAGE_ROOT"),

			MinIOEndpoint:  viper.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
			MinIOUseSSL:    viper.GetBool("MINIO_USE_SSL"),
			MinIOBucket:    viper.GetString("MINIO_BUCKET"),
		},
		Attachments: AttachmentsConfig{
			Domain:             viper.GetString("DOMAIN"),
			Host:               viper.GetString("ATTACHMENT_HOST"),
			Origin:             viper.GetString("ATTACHMENT_ORIGIN"),
			UseSSL:             viper.GetBool("ATTACHMENT_USE_SSL"),
			TrustForwardedHost: viper.GetBool("TRUST_FORWARDED_HOST"),
			MaxUploadSize:      viper.GetInt64("ATTACHMENT_MAX_UPLOAD_SIZE"),
			AllowedTypes:       splitList(viper.GetString("ATTACHMENT_ALLOWED_TYPES")),
			LoginURL:           viper.GetString("LOGIN_URL"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if cfg.Storage.Backend != "minio" && cfg.Storage.Backend != "filesystem" {
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "minio" && cfg.Storage.MinIOEndpoint == "" {
		return nil, fmt.Errorf("STORAGE_BACKEND=minio requires MINIO_ENDPOINT")
	}
	if cfg.Attachments.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("ATTACHMENT_MAX_UPLOAD_SIZE must be positive, got %d", cfg.Attachments.MaxUploadSize)
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.Attachments.Host == "" {
		logger.Warn("ATTACHMENT_HOST is not set; attachments are served from the main site")
	}

	return cfg, nil
}

// splitList splits a comma or whitespace separated env value.
func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
