// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// knownWeakSecrets contains example tokens that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-a-long-random-admin-token",
	"REPLACE_WITH_YOUR_OWN_ADMIN_TOKEN_VALUE",
}

// MinAdminTokenLength is the minimum admin token length accepted in production.
const MinAdminTokenLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath         string        `env:"CATALOG_DB_PATH" envDefault:"./data/catalog.db"`
	DBDriver       string        `env:"CATALOG_DB_DRIVER" envDefault:"sqlite"`
	DBBusyTimeout  time.Duration `env:"CATALOG_DB_BUSY_TIMEOUT" envDefault:"5s"`
	DBMaxOpenConns int           `env:"CATALOG_DB_MAX_OPEN_CONNS" envDefault:"25"`

	ServerHost     string        `env:"CATALOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"CATALOG_SERVER_PORT" envDefault:"8080"`
	Env            string        `env:"CATALOG_ENV" envDefault:"development"`
	LogLevel       string        `env:"CATALOG_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"CATALOG_REQUEST_TIMEOUT" envDefault:"15s"`

	// Catalog behaviour
	Locales             []string `env:"CATALOG_LOCALES" envSeparator:"," envDefault:"fa,en,ar"`
	CommentDeletePolicy string   `env:"CATALOG_COMMENT_DELETE_POLICY" envDefault:"orphan"`
	GatedCategories     []string `env:"CATALOG_GATED_CATEGORIES" envSeparator:"," envDefault:"services"`

	// Access and uploads
	CallerHeader   string   `env:"CATALOG_CALLER_HEADER" envDefault:"X-Caller-Phone"`
	TrustedProxies []string `env:"CATALOG_TRUSTED_PROXIES" envSeparator:"," envDefault:"127.0.0.1/32,::1/128"` // peers allowed to set CallerHeader
	AdminToken     string `env:"CATALOG_ADMIN_TOKEN"`
	UploadsDir     string `env:"CATALOG_UPLOADS_DIR" envDefault:"./uploads"`
	UploadMaxBytes int64  `env:"CATALOG_UPLOAD_MAX_BYTES" envDefault:"10485760"`

	// Cache configuration
	RedisURL       string        `env:"CATALOG_REDIS_URL"` // Optional Redis URL for shared access decisions
	CachePrefix    string        `env:"CATALOG_CACHE_PREFIX" envDefault:"catalog:"`
	CacheMaxSize   int           `env:"CATALOG_CACHE_MAX_SIZE" envDefault:"10000"`
	AccessCacheTTL time.Duration `env:"CATALOG_ACCESS_CACHE_TTL" envDefault:"30s"`

	// Comment rate limiting, per client IP
	CommentRateLimit float64 `env:"CATALOG_COMMENT_RATE_LIMIT" envDefault:"0.2"` // requests per second
	CommentRateBurst int     `env:"CATALOG_COMMENT_RATE_BURST" envDefault:"3"`

	// Maintenance
	MaintenanceSchedule string        `env:"CATALOG_MAINTENANCE_SCHEDULE" envDefault:"0 */6 * * *"`
	EventRetention      time.Duration `env:"CATALOG_EVENT_RETENTION" envDefault:"720h"`

	// Seeding configuration
	DoSeed bool `env:"CATALOG_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// LocaleSet builds the configured locale set.
func (c Config) LocaleSet() (*model.LocaleSet, error) {
	return model.NewLocaleSet(c.Locales...)
}

// CommentPolicy returns the configured comment delete policy.
func (c Config) CommentPolicy() model.DeletePolicy {
	return model.DeletePolicy(strings.ToLower(strings.TrimSpace(c.CommentDeletePolicy)))
}

// GatedKinds returns the entity kinds whose reads require authorization.
func (c Config) GatedKinds() []model.Kind {
	var kinds []model.Kind
	for _, name := range c.GatedCategories {
		if k, ok := model.ParseKind(strings.TrimSpace(name)); ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// TrustedPrefixes parses TrustedProxies. A bare address is taken as a
// single-host prefix.
func (c Config) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, v := range c.TrustedProxies {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.Contains(v, "/") {
			addr, err := netip.ParseAddr(v)
			if err != nil {
				return nil, fmt.Errorf("invalid address %q: %w", v, err)
			}
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return nil, fmt.Errorf("invalid prefix %q: %w", v, err)
		}
		prefixes = append(prefixes, p.Masked())
	}
	return prefixes, nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enum values, ranges, locales and the maintenance schedule.
func (c *Config) Validate() error {
	// Min and Max skip zero values, so numeric fields that must be set are also Required.
	err := validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.DBDriver, validation.Required, validation.In("sqlite", "sqlite3")),
		validation.Field(&c.DBBusyTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.DBMaxOpenConns, validation.Required, validation.Min(1)),
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Env, validation.Required, validation.In("development", "production")),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Locales, validation.Required),
		validation.Field(&c.CallerHeader, validation.Required),
		validation.Field(&c.UploadMaxBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.CommentRateLimit, validation.Required, validation.Min(0.001)),
		validation.Field(&c.CommentRateBurst, validation.Required, validation.Min(1)),
		validation.Field(&c.EventRetention, validation.Required, validation.Min(time.Hour)),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.LocaleSet(); err != nil {
		return fmt.Errorf("CATALOG_LOCALES: %w", err)
	}
	if !c.CommentPolicy().Valid() {
		return fmt.Errorf("CATALOG_COMMENT_DELETE_POLICY must be %q or %q, got %q",
			model.OnDeleteOrphan, model.OnDeleteCascade, c.CommentDeletePolicy)
	}
	for _, name := range c.GatedCategories {
		if _, ok := model.ParseKind(strings.TrimSpace(name)); !ok && strings.TrimSpace(name) != "" {
			return fmt.Errorf("CATALOG_GATED_CATEGORIES: unknown category %q", name)
		}
	}
	if _, err := c.TrustedPrefixes(); err != nil {
		return fmt.Errorf("CATALOG_TRUSTED_PROXIES: %w", err)
	}
	if _, err := cron.ParseStandard(c.MaintenanceSchedule); err != nil {
		return fmt.Errorf("CATALOG_MAINTENANCE_SCHEDULE: %w", err)
	}

	return c.validateAdminToken()
}

// validateAdminToken requires a strong token in production. In development
// an empty token leaves writes open, which is logged.
func (c *Config) validateAdminToken() error {
	if c.AdminToken == "" {
		if c.IsDevelopment() {
			slog.Warn("CATALOG_ADMIN_TOKEN is empty; write endpoints are open in development mode",
				"category", model.EventCategoryConfig)
			return nil
		}
		return fmt.Errorf("CATALOG_ADMIN_TOKEN is required in production")
	}
	if c.IsDevelopment() {
		return nil
	}

	if len(c.AdminToken) < MinAdminTokenLength {
		return fmt.Errorf("CATALOG_ADMIN_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinAdminTokenLength, len(c.AdminToken))
	}
	for _, weak := range knownWeakSecrets {
		if c.AdminToken == weak {
			return fmt.Errorf("CATALOG_ADMIN_TOKEN is a known example value and must not be used")
		}
	}
	if !hasMinimumEntropy(c.AdminToken) {
		slog.Warn("CATALOG_ADMIN_TOKEN has low character diversity; "+
			"consider generating a random token with: openssl rand -base64 32",
			"category", model.EventCategoryConfig)
	}
	return nil
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
