// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty selects the in-memory store (offline mode).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HS256 signing secret for the session bearer token.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "krishi-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "krishi-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTTTL is the bearer token lifetime (e.g. "168h"). The token outlives
	// restarts; the farm-record API reads it from the same store as the session.
	JWTTTL string `mapstructure:"JWT_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// OTPTTL is the validity window of an issued code (e.g. "5m"). "0" disables
	// expiry so a challenge stays valid until overwritten.
	OTPTTL string `mapstructure:"OTP_TTL"`
	// OTPSendDelay is the artificial delivery latency of the simulated SMS
	// channel (e.g. "1200ms"). "0" disables the delay.
	OTPSendDelay string `mapstructure:"OTP_SEND_DELAY"`
	// OTPReturnToClient when true enables dev OTP mode: issued codes are returned
	// in initiate responses and kept for GET /api/dev/otp. Must not be true when
	// Env is production (startup error).
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// GeocodeBaseURL is the reverse-geocoding endpoint used to prefill the
	// registration location field.
	GeocodeBaseURL string `mapstructure:"GEOCODE_BASE_URL"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" allows all.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables telemetry.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "krishi-auth")
	v.SetDefault("JWT_AUDIENCE", "krishi-api")
	v.SetDefault("JWT_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("OTP_SEND_DELAY", "1200ms")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("GEOCODE_BASE_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.JWTSecret == "" && cfg.Env == "production" {
		return nil, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPValidity parses OTPTTL as a time.Duration. Zero (no expiry) when set to
// "0"; 5m if unset or invalid.
func (c *Config) OTPValidity() time.Duration {
	if strings.TrimSpace(c.OTPTTL) == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.OTPTTL)
	if err != nil || d < 0 {
		return 5 * time.Minute
	}
	return d
}

// SendDelay parses OTPSendDelay as a time.Duration. Returns 1200ms if unset or
// invalid; zero when set to "0".
func (c *Config) SendDelay() time.Duration {
	if strings.TrimSpace(c.OTPSendDelay) == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.OTPSendDelay)
	if err != nil || d < 0 {
		return 1200 * time.Millisecond
	}
	return d
}

// CORSOriginsList returns allowed origins from the comma-separated config.
func (c *Config) CORSOriginsList() []string {
	if c == nil || c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
