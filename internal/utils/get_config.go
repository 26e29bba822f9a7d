package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database configuration
	DBDriver          string        `yaml:"DB_DRIVER"`
	DBUser            string        `yaml:"DB_USER"`
	DBName            string        `yaml:"DB_NAME"`
	DBPassword        string        `yaml:"DB_PASSWORD"`
	DBPort            string        `yaml:"DB_PORT"`
	DBHost            string        `yaml:"DB_HOST"`
	DBSSLMode         string        `yaml:"DB_SSLMODE"`
	DBTimeZone        string        `yaml:"DB_TIMEZONE"`
	DBPath            string        `yaml:"DB_PATH"`
	DBMaxOpenConns    int           `yaml:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `yaml:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `yaml:"DB_CONN_MAX_LIFETIME"`

	// HTTP configuration
	AppURL       string `yaml:"APP_URL"`
	HTTPPort     string `yaml:"HTTP_PORT"`
	RateLimitMax int    `yaml:"RATE_LIMIT_MAX"`
	BodyLimitMB  int    `yaml:"BODY_LIMIT_MB"`

	// Evidence storage configuration
	StorageDriver string `yaml:"STORAGE_DRIVER"`
	UploadFolder  string `yaml:"UPLOAD_FOLDER"`

	// AWS S3 configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`
	AWSS3Endpoint string `yaml:"AWS_S3_ENDPOINT"`
	AWSS3Prefix   string `yaml:"AWS_S3_PREFIX"`

	// Ledger configuration
	DefaultPharmaStatus string `yaml:"DEFAULT_PHARMA_STATUS"`

	// Logging configuration
	LogLevel      string `yaml:"LOG_LEVEL"`
	LogFormat     string `yaml:"LOG_FORMAT"`
	AccessLogFile string `yaml:"ACCESS_LOG_FILE"`
}

// DefaultConfig mirrors the settings the service ran with before it was
// configurable: a 1..4 connection pool and uploads under static/uploads.
func DefaultConfig() Config {
	return Config{
		DBDriver:            "postgres",
		DBUser:              "herbpass",
		DBName:              "herbpass",
		DBPort:              "5432",
		DBHost:              "localhost",
		DBSSLMode:           "disable",
		DBTimeZone:          "UTC",
		DBPath:              "herbpass.db",
		DBMaxOpenConns:      4,
		DBMaxIdleConns:      1,
		DBConnMaxLifetime:   30 * time.Minute,
		AppURL:              "http://localhost:5000",
		HTTPPort:            "5000",
		RateLimitMax:        10,
		BodyLimitMB:         16,
		StorageDriver:       "local",
		UploadFolder:        "static/uploads",
		AWSS3Prefix:         "uploads",
		DefaultPharmaStatus: "Packaged",
		LogLevel:            "info",
		LogFormat:           "json",
		AccessLogFile:       "./logs/app.log",
	}
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// loads a .env file if present and lets environment variables named after the
// YAML keys override both.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %s\n", err)
	}

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyEnv overrides fields from environment variables named by their yaml tag.
func applyEnv(config *Config) error {
	v := reflect.ValueOf(config).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("yaml")
		raw, ok := os.LookupEnv(key)
		if !ok || key == "" {
			continue
		}
		field := v.Field(i)
		switch {
		case field.Type() == reflect.TypeOf(time.Duration(0)):
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			field.SetInt(int64(d))
		case field.Kind() == reflect.Int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			field.SetInt(int64(n))
		case field.Kind() == reflect.String:
			field.SetString(raw)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "local":
		if c.UploadFolder == "" {
			return errors.New("UPLOAD_FOLDER is required for local storage")
		}
	case "s3":
		if c.AWSS3Bucket == "" || c.AWSS3Region == "" {
			return errors.New("AWS_S3_BUCKET and AWS_S3_REGION are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if strings.TrimSpace(c.AppURL) == "" {
		return errors.New("APP_URL is required")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if strings.TrimSpace(c.DefaultPharmaStatus) == "" {
		c.DefaultPharmaStatus = DefaultConfig().DefaultPharmaStatus
	}
	return nil
}
