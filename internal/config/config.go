package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	ImagesLocal = "local"
	ImagesS3    = "s3"
)

type Config struct {
	Env        string
	ListenAddr string
	LogLevel   string
	LogFile    string

	StoreBackend  string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ImageBackend   string
	ImageLocalPath string
	ImageBaseURL   string
	S3             S3Config

	ThumbnailMaxWidth  int
	ThumbnailMaxHeight int

	OTLPAddr    string
	ServiceName string

	DefaultUserID   string
	ShutdownTimeout time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:        getEnv("ENV", "development"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),

		StoreBackend:  getEnv("STORE_BACKEND", StoreSQLite),
		DBPath:        getEnv("DB_PATH", "/data/placeoffers.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ImageBackend:   getEnv("IMAGE_BACKEND", ImagesLocal),
		ImageLocalPath: getEnv("IMAGE_LOCAL_PATH", "/data/images"),
		ImageBaseURL:   getEnv("IMAGE_BASE_URL", "http://localhost:8080/images"),
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicURL:       getEnv("S3_PUBLIC_URL", ""),
		},

		ThumbnailMaxWidth:  getEnvInt("THUMBNAIL_MAX_WIDTH", 320),
		ThumbnailMaxHeight: getEnvInt("THUMBNAIL_MAX_HEIGHT", 320),

		OTLPAddr:    getEnv("OTLP_GRPC_ADDR", ""),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "placeoffers"),

		DefaultUserID:   getEnv("DEFAULT_USER_ID", ""),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.ImageBackend {
	case ImagesLocal:
		if c.ImageLocalPath == "" {
			errs = append(errs, errors.New("IMAGE_LOCAL_PATH is required for local images"))
		}
	case ImagesS3:
		if c.S3.Bucket == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
			errs = append(errs, errors.New("S3_BUCKET, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for s3 images"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_BACKEND %q", c.ImageBackend))
	}

	if c.ThumbnailMaxWidth <= 0 || c.ThumbnailMaxHeight <= 0 {
		errs = append(errs, errors.New("thumbnail bounds must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
