// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your_jwt_secret_key_here_change_in_production",
}

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"TCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"TCMS_LOG_LEVEL" envDefault:"info"`
	ServerHost string `env:"TCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TCMS_SERVER_PORT" envDefault:"5000"`

	// Database
	DBDriver       string `env:"TCMS_DB_DRIVER" envDefault:"mysql"`
	DBHost         string `env:"TCMS_DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"TCMS_DB_PORT" envDefault:"3306"`
	DBUser         string `env:"TCMS_DB_USER" envDefault:"root"`
	DBPassword     string `env:"TCMS_DB_PASSWORD"`
	DBName         string `env:"TCMS_DB_NAME" envDefault:"ont_cms"`
	DBPath         string `env:"TCMS_DB_PATH" envDefault:"./data/tcms.db"` // sqlite only
	DBMaxOpenConns int    `env:"TCMS_DB_MAX_OPEN_CONNS" envDefault:"10"`

	// Auth
	JWTSecret    string `env:"TCMS_JWT_SECRET,required"`
	JWTExpiresIn string `env:"TCMS_JWT_EXPIRES_IN" envDefault:"7d"`

	// CORS origins of the public site and the admin panel
	FrontendURL string `env:"TCMS_FRONTEND_URL" envDefault:"http://localhost:5173"`
	AdminURL    string `env:"TCMS_ADMIN_URL" envDefault:"http://localhost:5174"`

	// Uploads
	UploadsDir         string        `env:"TCMS_UPLOADS_DIR" envDefault:"./uploads"`
	UploadMaxBytes     int64         `env:"TCMS_UPLOAD_MAX_BYTES" envDefault:"10485760"`
	UploadMaxDimension int           `env:"TCMS_UPLOAD_MAX_DIMENSION" envDefault:"2560"`
	UploadSweepSpec    string        `env:"TCMS_UPLOAD_SWEEP_SCHEDULE" envDefault:"@daily"`
	UploadSweepGrace   time.Duration `env:"TCMS_UPLOAD_SWEEP_GRACE" envDefault:"24h"`

	// Cache configuration
	RedisURL     string `env:"TCMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"TCMS_CACHE_PREFIX" envDefault:"tcms:"`   // Redis key prefix
	CacheTTL     int    `env:"TCMS_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"TCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Rate limiting (requests per second per client IP)
	LoginRate  float64 `env:"TCMS_LOGIN_RATE" envDefault:"0.5"`
	LoginBurst int     `env:"TCMS_LOGIN_BURST" envDefault:"5"`
	APIRate    float64 `env:"TCMS_API_RATE" envDefault:"20"`
	APIBurst   int     `env:"TCMS_API_BURST" envDefault:"40"`

	// GeoIP configuration
	GeoIPDBPath string `env:"TCMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// First admin account, created only when admin_users is empty
	SeedAdminUsername string `env:"TCMS_SEED_ADMIN_USERNAME" envDefault:"admin"`
	SeedAdminEmail    string `env:"TCMS_SEED_ADMIN_EMAIL" envDefault:"admin@localhost"`
	SeedAdminPassword string `env:"TCMS_SEED_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// AllowedOrigins returns the CORS allow-list.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range []string{c.FrontendURL, c.AdminURL} {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// TokenTTL returns the parsed JWT lifetime.
func (c Config) TokenTTL() time.Duration {
	d, _ := ParseExpiry(c.JWTExpiresIn)
	return d
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}

	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = 10 * time.Second
	mc.ReadTimeout = 30 * time.Second
	mc.WriteTimeout = 30 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}
	mc.Collation = "utf8mb4_unicode_ci"
	return mc.FormatDSN()
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBDriver != DriverMySQL && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("TCMS_DB_DRIVER must be %q or %q, got %q", DriverMySQL, DriverSQLite, cfg.DBDriver)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("TCMS_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("TCMS_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("TCMS_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if _, err := ParseExpiry(cfg.JWTExpiresIn); err != nil {
		return nil, fmt.Errorf("TCMS_JWT_EXPIRES_IN: %w", err)
	}

	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("TCMS_UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// ParseExpiry parses a token lifetime. It accepts Go durations ("12h",
// "90m") and whole days with a "d" suffix ("7d").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
