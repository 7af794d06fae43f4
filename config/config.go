package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"1414"`
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	MongoURI      string `envconfig:"MONGO_URI" required:"true"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"erp"`

	// JWTSecretName names the environment variable the auth guard reads its
	// signing secret from.
	JWTSecretName string `envconfig:"JWT_SECRET_NAME" default:"JWT_SECRET"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MetricsAllow   []string `envconfig:"METRICS_ALLOW"`

	SMTP  SMTPConfig
	MinIO MinIOConfig
	Redis RedisConfig

	AppEmail string `envconfig:"APP_EMAIL" default:"noreply@example.com"`
	BaseURL  string `envconfig:"BASE_URL" default:"localhost:3000"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"465"`
	User     string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASSWORD"`
}

// MinIOConfig holds object storage settings. An empty endpoint disables uploads.
type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"erp"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	Limit    int           `envconfig:"RATE_LIMIT" default:"10"`
	Window   time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
