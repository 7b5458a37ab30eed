package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string `env:"DB_HOST" envDefault:"localhost"`
	DbPORT     string `env:"DB_PORT" envDefault:"5432"`
	DbUSER     string `env:"DB_USER" envDefault:"postgres"`
	DbPASSWORD string `env:"DB_PASSWORD" envDefault:"password"`
	DbNAME     string `env:"DB_NAME" envDefault:"citizenpress"`
	DbSSLMODE  string `env:"DB_SSLMODE" envDefault:"disable"`

	MigrationsPath string `env:"DB_MIGRATIONS" envDefault:"migrations/001_create_tables.sql"`
}

type MinIO struct {
	Endpoint      string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey     string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	BucketName    string `env:"MINIO_BUCKET_NAME" envDefault:"citizenpress"`
	UseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	Region        string `env:"MINIO_REGION" envDefault:"ap-south-1"`
	PublicBaseURL string `env:"MINIO_PUBLIC_URL" envDefault:"http://localhost:9000"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM" envDefault:"noreply@citizenpress.local"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"Citizen Press"`
}

// Enabled reports whether enough settings are present to deliver mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

type Archive struct {
	TimeZone   string `env:"ARCHIVE_TIMEZONE" envDefault:"Asia/Kolkata"`
	DateLocale string `env:"ARCHIVE_DATE_LOCALE" envDefault:"hi-IN"`
}

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`

	DB      DB
	MinIO   MinIO
	SMTP    SMTP
	Archive Archive

	JWTSecretKey        string        `env:"JWT_SECRET_KEY"`
	AccessTokenDuration time.Duration `env:"ACCESS_TOKEN_DURATION" envDefault:"168h"`
	ResetTokenDuration  time.Duration `env:"RESET_TOKEN_DURATION" envDefault:"15m"`
	OTPDuration         time.Duration `env:"OTP_DURATION" envDefault:"10m"`
	OTPPurgeInterval    time.Duration `env:"OTP_PURGE_INTERVAL" envDefault:"15m"`

	MaxUploadSize  int64  `env:"MAX_UPLOAD_SIZE" envDefault:"15728640"`
	BreakingLimit  int    `env:"BREAKING_NEWS_LIMIT" envDefault:"10"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if _, err := time.LoadLocation(c.Archive.TimeZone); err != nil {
		return fmt.Errorf("ARCHIVE_TIMEZONE %q: %w", c.Archive.TimeZone, err)
	}
	return nil
}

// ArchiveLocation returns the time zone used to turn instants into issue dates.
func (c *Config) ArchiveLocation() *time.Location {
	loc, err := time.LoadLocation(c.Archive.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
