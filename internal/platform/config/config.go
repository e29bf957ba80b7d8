// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps environment variables onto [Config] with caarlos0/env.

Load runs once at startup and the result is passed down by constructor;
nothing reads the environment after that.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

// Config is the complete runtime configuration of the CMS.
type Config struct {
	// # Server
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// # PostgreSQL
	DatabaseURL        string        `env:"DATABASE_URL,required"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"25"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`
	MigrationPath      string        `env:"MIGRATION_PATH"       envDefault:"./data/migrations"`

	// # Redis (job locks)
	RedisURL string `env:"REDIS_URL,required"`

	// # Access tokens
	// Tokens are issued by the identity service; only the public key lives here.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`
	JWTIssuer     string `env:"JWT_ISSUER"          envDefault:"yomira.app"`

	// # Authorization
	// Grant changes made by another instance are seen once the TTL lapses.
	PermissionCacheSize int           `env:"PERMISSION_CACHE_SIZE" envDefault:"4096"`
	PermissionCacheTTL  time.Duration `env:"PERMISSION_CACHE_TTL"  envDefault:"30s"`

	// # Rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`

	// # Background jobs
	PublishSweepInterval time.Duration `env:"PUBLISH_SWEEP_INTERVAL" envDefault:"1m"`
	TagReconcileInterval time.Duration `env:"TAG_RECONCILE_INTERVAL" envDefault:"1h"`

	// # CORS
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// Load parses and checks the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) check() error {
	var errs []error
	if c.PermissionCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("PERMISSION_CACHE_SIZE must be positive, got %d", c.PermissionCacheSize))
	}
	if c.PermissionCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("PERMISSION_CACHE_TTL must be positive, got %s", c.PermissionCacheTTL))
	}
	if c.PublishSweepInterval <= 0 || c.TagReconcileInterval <= 0 {
		errs = append(errs, errors.New("job intervals must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}
	return errors.Join(errs...)
}

// PoolOptions returns the pgx pool tuning.
func (c *Config) PoolOptions() postgres.Options {
	return postgres.Options{MaxConns: c.DBMaxConns, StatementTimeout: c.DBStatementTimeout}
}

// IsDevelopment also relaxes CORS to any origin.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins lists the origins accepted outside development.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
