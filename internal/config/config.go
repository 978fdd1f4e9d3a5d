package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Mail      MailConfig
	PayFast   PayFastConfig
	Storage   StorageConfig
	Currency  CurrencyConfig
	OAuth     OAuthConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               string
	Env                string
	Version            string
	LogLevel           string
	PublicSiteURL      string
	CORSAllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds the session key and the admin allow-list applied at startup
type SecurityConfig struct {
	SessionEncryptionKey string
	AdminEmails          []string
}

// MailConfig selects and configures the mail relay
type MailConfig struct {
	Provider         string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	From             string
	FromName         string
	ContactRecipient string
	SendGridAPIKey   string
	SendGridSandbox  bool
}

// PayFastConfig holds hosted checkout credentials
type PayFastConfig struct {
	Sandbox     bool
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	MinAmount   float64
}

// StorageConfig holds object storage settings for property media
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// CurrencyConfig holds the upstream lookups used for display currency
type CurrencyConfig struct {
	ExchangeRateURL     string
	IPLookupURL         string
	ReverseGeocodeURL   string
	RateCacheTTL        time.Duration
	RateRefreshInterval time.Duration
	RateFailureBackoff  time.Duration
	BaseCurrency        string
	LookupTimeout       time.Duration
}

// OAuthConfig configures ID token verification
type OAuthConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

// RateLimitConfig bounds contact form submissions per client IP
type RateLimitConfig struct {
	ContactPerMinute int
	ContactBurst     int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "8080"),
			Env:                getEnv("SERVER_ENV", "development"),
			Version:            getEnv("SERVER_VERSION", "1.0.0"),
			LogLevel:           getEnv("LOG_LEVEL", ""),
			PublicSiteURL:      strings.TrimRight(getEnv("PUBLIC_SITE_URL", "http://localhost:3000"), "/"),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "luxe_estates"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			AdminEmails:          getEnvAsList("ADMIN_EMAILS", nil),
		},
		Mail: MailConfig{
			Provider:         strings.ToLower(getEnv("MAIL_PROVIDER", "smtp")),
			SMTPHost:         getEnv("SMTP_HOST", "localhost"),
			SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:         getEnv("SMTP_USER", ""),
			SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
			From:             getEnv("MAIL_FROM", "noreply@luxe-estates.local"),
			FromName:         getEnv("MAIL_FROM_NAME", "Luxe Estates"),
			ContactRecipient: getEnv("CONTACT_RECIPIENT", "info@luxe-estates.local"),
			SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
			SendGridSandbox:  getEnvAsBool("SENDGRID_SANDBOX", false),
		},
		PayFast: PayFastConfig{
			Sandbox:     getEnvAsBool("PAYFAST_SANDBOX", true),
			MerchantID:  getEnv("PAYFAST_MERCHANT_ID", "10000100"),
			MerchantKey: getEnv("PAYFAST_MERCHANT_KEY", "46f0cd694581a"),
			Passphrase:  getEnv("PAYFAST_PASSPHRASE", ""),
			ReturnURL:   getEnv("PAYFAST_RETURN_URL", "http://localhost:3000/payment/success"),
			CancelURL:   getEnv("PAYFAST_CANCEL_URL", "http://localhost:3000/payment/cancel"),
			NotifyURL:   getEnv("PAYFAST_NOTIFY_URL", "http://localhost:8080/api/payfast/notify"),
			MinAmount:   getEnvAsFloat("PAYFAST_MIN_AMOUNT", 1.00),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:        getEnv("MINIO_BUCKET", "property-images"),
			UseSSL:        getEnvAsBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(getEnv("MINIO_PUBLIC_BASE_URL", ""), "/"),
		},
		Currency: CurrencyConfig{
			ExchangeRateURL:     getEnv("EXCHANGE_RATE_URL", "https://open.er-api.com/v6/latest/USD"),
			IPLookupURL:         getEnv("IP_LOOKUP_URL", "https://ipapi.co"),
			ReverseGeocodeURL:   getEnv("REVERSE_GEOCODE_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
			RateCacheTTL:        getEnvAsDuration("RATE_CACHE_TTL", time.Hour),
			RateRefreshInterval: getEnvAsDuration("RATE_REFRESH_INTERVAL", 30*time.Minute),
			RateFailureBackoff:  getEnvAsDuration("RATE_FAILURE_BACKOFF", 15*time.Second),
			BaseCurrency:        strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
			LookupTimeout:       getEnvAsDuration("LOOKUP_TIMEOUT", 5*time.Second),
		},
		OAuth: OAuthConfig{
			JWKSURL:  getEnv("OAUTH_JWKS_URL", ""),
			Issuer:   getEnv("OAUTH_ISSUER", ""),
			Audience: getEnv("OAUTH_AUDIENCE", ""),
		},
		RateLimit: RateLimitConfig{
			ContactPerMinute: getEnvAsInt("CONTACT_RATE_PER_MINUTE", 5),
			ContactBurst:     getEnvAsInt("CONTACT_BURST", 3),
		},
	}
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
