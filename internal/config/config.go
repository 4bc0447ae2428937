package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Content   ContentConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// PublicBaseURL prefixes share links, e.g. https://love.example.com
	PublicBaseURL string
	// CORSOrigins lists browser origins allowed to call the API; "*" allows any.
	CORSOrigins []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PostgresConfig struct {
	URL      string
	MaxConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// MinIOConfig holds object storage settings for uploaded images. Uploads
// fall back to inline data URLs when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL is the externally reachable base for object URLs; defaults
	// to the endpoint.
	PublicURL string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type ContentConfig struct {
	// TemplateType is the template tag every project and share link is scoped to.
	TemplateType string
	// Backend selects the project store: memory, mongo or postgres.
	Backend       string
	Debounce      time.Duration
	MaxImageBytes int64
	WorkspaceTTL  time.Duration
}

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MONGODB_DATABASE", "lovestory")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "images")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("CONTENT_TEMPLATE_TYPE", "spiderman")
	v.SetDefault("CONTENT_BACKEND", BackendMemory)
	v.SetDefault("CONTENT_DEBOUNCE_MS", 300)
	v.SetDefault("CONTENT_MAX_IMAGE_BYTES", 2*1024*1024)
	v.SetDefault("CONTENT_WORKSPACE_TTL_MINUTES", 120)

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("SERVER_PORT"),
			Host:          v.GetString("SERVER_HOST"),
			Environment:   v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  30 * time.Second,
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			CORSOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Postgres: PostgresConfig{
			URL:      v.GetString("POSTGRES_URL"),
			MaxConns: v.GetInt32("POSTGRES_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			PublicURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Content: ContentConfig{
			TemplateType:  v.GetString("CONTENT_TEMPLATE_TYPE"),
			Backend:       strings.ToLower(strings.TrimSpace(v.GetString("CONTENT_BACKEND"))),
			Debounce:      time.Duration(v.GetInt("CONTENT_DEBOUNCE_MS")) * time.Millisecond,
			MaxImageBytes: v.GetInt64("CONTENT_MAX_IMAGE_BYTES"),
			WorkspaceTTL:  time.Duration(v.GetInt("CONTENT_WORKSPACE_TTL_MINUTES")) * time.Minute,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET is not set; set a secure value in production")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Content.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("CONTENT_BACKEND=mongo requires MONGODB_URI")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("CONTENT_BACKEND=postgres requires POSTGRES_URL")
		}
	default:
		return fmt.Errorf("unknown CONTENT_BACKEND %q", c.Content.Backend)
	}
	if c.Content.TemplateType == "" {
		return fmt.Errorf("CONTENT_TEMPLATE_TYPE must not be empty")
	}
	if c.Content.MaxImageBytes <= 0 {
		return fmt.Errorf("CONTENT_MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
