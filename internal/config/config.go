package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLinkExpiry matches the one hour window S3 signers apply when no expiry is given.
	DefaultLinkExpiry = time.Hour
	// DefaultCredentialTimeout bounds a single resolution of backend credentials.
	DefaultCredentialTimeout = 200 * time.Millisecond
	// DefaultEndpoint is the global S3 endpoint.
	DefaultEndpoint = "s3.amazonaws.com"
	// DefaultRegion is used for signing when no region is configured.
	DefaultRegion = "us-east-1"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendMinIO = "minio"
	BackendS3    = "s3"
)

// ErrConfig is returned when required environment configuration is missing or invalid.
var ErrConfig = errors.New("invalid configuration")

// GatewayConfig is the per-deployment gate: the one bucket served and the static Basic credential pair.
type GatewayConfig struct {
	Bucket   string
	Username string
	Password string
}

// StorageConfig holds object storage settings shared by the MinIO and AWS SDK backends.
// AccessKey and SecretKey are optional; when empty the backend credential chain is used.
type StorageConfig struct {
	Backend           string
	Endpoint          string
	Region            string
	UseSSL            bool
	AccessKey         string
	SecretKey         string
	SessionToken      string
	LinkExpiry        time.Duration
	CredentialTimeout time.Duration
}

// HasStaticCredentials reports whether an explicit key pair was configured.
func (c StorageConfig) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port        string
	MetricsPort string
	LogLevel    string
	Gateway     GatewayConfig
	Storage     StorageConfig
}

// Load reads configuration from environment variables and validates it.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Gateway: GatewayConfig{
			Bucket:   os.Getenv("BUCKET"),
			Username: os.Getenv("USERNAME"),
			Password: os.Getenv("PASSWORD"),
		},
		Storage: StorageConfig{
			Backend:           strings.ToLower(getEnv("STORAGE_BACKEND", BackendMinIO)),
			Endpoint:          getEnv("STORAGE_ENDPOINT", DefaultEndpoint),
			Region:            getEnv("STORAGE_REGION", DefaultRegion),
			UseSSL:            getEnvBool("STORAGE_USE_SSL", true),
			AccessKey:         os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:         os.Getenv("STORAGE_SECRET_KEY"),
			SessionToken:      os.Getenv("STORAGE_SESSION_TOKEN"),
			LinkExpiry:        getEnvDuration("LINK_EXPIRY", DefaultLinkExpiry),
			CredentialTimeout: getEnvDuration("CREDENTIAL_TIMEOUT", DefaultCredentialTimeout),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required field is present.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.Gateway.Bucket == "" {
		missing = append(missing, "BUCKET")
	}
	if c.Gateway.Username == "" {
		missing = append(missing, "USERNAME")
	}
	if c.Gateway.Password == "" {
		missing = append(missing, "PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}

	switch c.Storage.Backend {
	case BackendMinIO, BackendS3:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrConfig, c.Storage.Backend)
	}
	if c.Storage.LinkExpiry <= 0 {
		return fmt.Errorf("%w: LINK_EXPIRY must be positive", ErrConfig)
	}
	if c.Storage.CredentialTimeout <= 0 {
		return fmt.Errorf("%w: CREDENTIAL_TIMEOUT must be positive", ErrConfig)
	}
	return nil
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

// getEnvDuration accepts Go duration strings ("750ms", "1h").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
