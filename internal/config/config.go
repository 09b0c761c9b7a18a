package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	minJWTSecretLength       = 32
	minUniqueCharsInSecret   = 16
	minRepeatedCharThreshold = 4
	maxRepeatedChars         = 2

	EnvProduction = "production"

	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errJWTExpiryFmt            = "JWT_EXPIRY_MINUTES must be positive, got %d"
	errDBConnsFmt              = "DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)"
	errInvalidConfigurationFmt = "invalid configuration: %w"
	errTrustedProxyFmt         = "TRUSTED_PROXIES: %q is not a CIDR range"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Database string `envconfig:"DB_NAME" default:"crt"`
	User     string `envconfig:"DB_USER" default:"crt_app"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

type JWTConfig struct {
	Secret        string `envconfig:"JWT_SECRET" required:"true"`
	ExpiryMinutes int    `envconfig:"JWT_EXPIRY_MINUTES" default:"60"`
}

type AWSConfig struct {
	Region          string `envconfig:"AWS_REGION" default:"ap-south-1"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	Bucket          string `envconfig:"AWS_S3_BUCKET"`
	CoursePrefix    string `envconfig:"AWS_S3_COURSE_PREFIX" default:"Courses"`
	// PresignExpiry bounds the lifetime of PDF stream redirects.
	PresignExpiry time.Duration `envconfig:"AWS_PRESIGN_EXPIRY" default:"15m"`
}

type RedisConfig struct {
	Addr              string        `envconfig:"REDIS_ADDR"`
	Password          string        `envconfig:"REDIS_PASSWORD"`
	DB                int           `envconfig:"REDIS_DB" default:"0"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"60s"`
}

type AppConfig struct {
	Env              string   `envconfig:"APP_ENV" default:"development"`
	LogLevel         string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string   `envconfig:"LOG_FORMAT" default:"json"`
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	MaxUploadSize    string   `envconfig:"MAX_UPLOAD_SIZE" default:"50M"`
	// TrustedProxies lists the CIDR ranges allowed to set X-Forwarded-For.
	// Empty means the peer address is the client address.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// Load reads every section from the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []any{&cfg.Server, &cfg.Database, &cfg.JWT, &cfg.AWS, &cfg.Redis, &cfg.App}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf(errDBConnsFmt, c.Database.MinConns, c.Database.MaxConns)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.JWT.ExpiryMinutes <= 0 {
		return fmt.Errorf(errJWTExpiryFmt, c.JWT.ExpiryMinutes)
	}

	if _, err := c.App.TrustedProxyRanges(); err != nil {
		return err
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// StorageEnabled reports whether course file uploads can reach S3.
func (c *AWSConfig) StorageEnabled() bool {
	return c.Bucket != "" && c.Region != ""
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *AppConfig) TrustedProxyRanges() ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, cidr := range c.TrustedProxies {
		_, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf(errTrustedProxyFmt, cidr)
		}
		ranges = append(ranges, ipNet)
	}
	return ranges, nil
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}
