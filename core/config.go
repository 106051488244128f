package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"annualreports/internal/assets"
)

// Config is built once at process start and handed to the components that
// need it. Nothing below cmd/ reads the environment directly.
type Config struct {
	Environment string
	Port        string

	Database DatabaseConfig

	// Origins allowed to call the API from a browser.
	AllowedOrigins []string
	// Prefix for logo values stored as relative paths.
	MediaURL string

	Assets assets.Config

	// Upper bound for every call to the asset store or a remote document.
	RemoteTimeout  time.Duration
	MaxUploadBytes int64

	PdftoppmPath string
	ThumbnailDPI int
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the connection string understood by the postgres driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.Name,
		d.Port,
		d.SSLMode,
	)
}

// LoadConfig reads the configuration from the environment. Call
// godotenv.Load beforehand to pick up a .env file.
func LoadConfig() (*Config, error) {
	timeout, err := getDurationEnv("REMOTE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	maxUpload, err := getIntEnv("MAX_UPLOAD_BYTES", 64<<20)
	if err != nil {
		return nil, err
	}

	dpi, err := getIntEnv("THUMBNAIL_DPI", 72)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "production"),
		Port:        getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		MediaURL:       strings.TrimRight(getEnv("MEDIA_URL", "/media"), "/"),
		Assets: assets.Config{
			Backend:             getEnv("ASSET_STORE", "cloudinary"),
			CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Bucket:              os.Getenv("S3_BUCKET"),
			Region:              getEnv("S3_REGION", "auto"),
			Endpoint:            os.Getenv("S3_ENDPOINT"),
			AccessKey:           os.Getenv("S3_ACCESS_KEY"),
			SecretKey:           os.Getenv("S3_SECRET_KEY"),
			PublicURL:           os.Getenv("S3_PUBLIC_URL"),
			BasePath:            getEnv("LOCAL_ASSET_PATH", "./media"),
			BaseURL:             getEnv("LOCAL_ASSET_URL", "/media"),
		},
		RemoteTimeout:  timeout,
		MaxUploadBytes: int64(maxUpload),
		PdftoppmPath:   getEnv("PDFTOPPM_PATH", "pdftoppm"),
		ThumbnailDPI:   dpi,
	}

	if cfg.Database.URL == "" && cfg.Database.Name == "" {
		return nil, fmt.Errorf("either DATABASE_URL or DB_NAME must be set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
