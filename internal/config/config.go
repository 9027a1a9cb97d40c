package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	MediaDriverLocal = "local"
	MediaDriverMinIO = "minio"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MediaConfig selects where uploaded images are written and how large they may be.
type MediaConfig struct {
	Driver         string
	Root           string
	MaxUploadBytes int64
	MinIO          MinIOConfig
}

// NATSConfig enables lifecycle event publishing when URL is set.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// PaginationConfig holds listing defaults.
type PaginationConfig struct {
	DefaultLimit int
	OwnerLimit   int
	MaxLimit     int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost            string
	Port               string
	PublicBaseURL      string
	LogLevel           string
	TimeZone           string
	ExposeErrorDetails bool
	BodyLimitBytes     int
	StoreDriver        string
	JWTSecret          string
	Database           DatabaseConfig
	Mongo              MongoConfig
	Media              MediaConfig
	NATS               NATSConfig
	Pagination         PaginationConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	port := getEnv("PORT", "8080")
	return &AppConfig{
		AppHost:            getEnv("APP_HOST", "localhost:"+port),
		Port:               port,
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TimeZone:           getEnv("TZ_NAME", "UTC"),
		ExposeErrorDetails: getEnvBool("EXPOSE_ERROR_DETAILS", false),
		BodyLimitBytes:     getEnvInt("BODY_LIMIT_BYTES", 64<<20),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("MONGO_DATABASE", "goout"),
			ConnectTimeout: getEnvInt("MONGO_CONNECT_TIMEOUT_SEC", 10),
		},
		Media: MediaConfig{
			Driver:         strings.ToLower(getEnv("MEDIA_DRIVER", MediaDriverLocal)),
			Root:           getEnv("MEDIA_ROOT", "uploads"),
			MaxUploadBytes: getEnvInt64("MEDIA_MAX_UPLOAD_BYTES", 5<<20),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "goout"),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvInt("PAGE_DEFAULT_LIMIT", 12),
			OwnerLimit:   getEnvInt("PAGE_OWNER_LIMIT", 10),
			MaxLimit:     getEnvInt("PAGE_MAX_LIMIT", 100),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
