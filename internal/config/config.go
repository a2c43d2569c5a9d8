package config

import (
	"os"
	"strconv"
	"time"
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
}

// MinIOConfig holds object storage settings for the template archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ConverterConfig holds settings for the external page-layout converter.
type ConverterConfig struct {
	// Binary is the converter executable, typically "soffice" or "libreoffice".
	Binary string
	// Filter optionally names an explicit export filter appended to the
	// convert-to target (e.g. "calc_pdf_Export").
	Filter string
	// Timeout bounds a single converter invocation.
	Timeout time.Duration
	// OutputGrace is how long to keep polling for the expected output file
	// after the converter process has exited.
	OutputGrace time.Duration
}

// ArtifactConfig holds the generated-artifact layout and cleanup policy.
type ArtifactConfig struct {
	// Dir is the base directory; each artifact type gets a subdirectory.
	Dir string
	// MaxAge is the cleanup age threshold applied uniformly to every typed
	// directory.
	MaxAge time.Duration
	// SweepInterval is the period between cleanup sweeps after the initial
	// sweep at startup.
	SweepInterval time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	TemplatesDir string
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Converter    ConverterConfig
	Artifacts    ArtifactConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8080"),
		Port:         getEnv("PORT", "8080"), // default only for non-sensitive value
		TemplatesDir: getEnv("TEMPLATES_DIR", "data/templates"),
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
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Converter: ConverterConfig{
			Binary:      getEnv("CONVERTER_BINARY", "soffice"),
			Filter:      getEnv("CONVERTER_FILTER", ""),
			Timeout:     getEnvDuration("CONVERTER_TIMEOUT", 120*time.Second),
			OutputGrace: getEnvDuration("CONVERTER_OUTPUT_GRACE", 3*time.Second),
		},
		Artifacts: ArtifactConfig{
			Dir:           getEnv("ARTIFACTS_DIR", "data/generated"),
			MaxAge:        getEnvDuration("ARTIFACTS_MAX_AGE", time.Hour),
			SweepInterval: getEnvDuration("ARTIFACTS_SWEEP_INTERVAL", 12*time.Hour),
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
