// Package config handles configuration shared by the redemption server and
// the operator CLI: defaults, environment (.env), a JSON overlay and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/cryptox"
	"github.com/dmitrijs2005/magiclink/internal/netx"
	"github.com/go-playground/validator/v10"
)

// Storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	TokenStoreSQL    = "sql"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config holds runtime settings for magiclink.
//
// Fields:
//   - HTTPAddr / GRPCAddr: listen addresses of the redemption server and its health service.
//   - HomeURL: site base URL; its host is the domain tokens are bound to.
//   - AfterLoginPath: where a successful redemption redirects, relative to HomeURL.
//   - DatabaseDriver / DatabaseDSN: SQL backend for options, accounts and (by default) tokens.
//   - TokenStore: backend of the ephemeral token store.
//   - RedisAddr / RedisPassword / RedisDB: Redis connection when TokenStore is "redis".
//   - SessionSecret / SessionTTL: HMAC secret and lifetime of session tokens issued on login.
//   - TokenTTL: lifetime of a magic login token.
//   - SweepInterval: how often expired token rows are purged.
//   - RedeemRateLimit: redemption requests per minute per IP, 0 disables.
//   - ArgonMemory / ArgonTime / ArgonThreads: argon2id cost for token hashes.
//   - LogLevel / LogFormat: see logging.New.
type Config struct {
	HTTPAddr        string `validate:"required"`
	GRPCAddr        string `validate:"required"`
	HomeURL         string `validate:"required,url"`
	AfterLoginPath  string `validate:"required,startswith=/"`
	DatabaseDriver  string `validate:"oneof=postgres sqlite"`
	DatabaseDSN     string `validate:"required"`
	TokenStore      string `validate:"oneof=sql redis memory"`
	RedisAddr       string `validate:"required_if=TokenStore redis"`
	RedisPassword   string
	RedisDB         int           `validate:"gte=0"`
	SessionSecret   string        `validate:"required"`
	SessionTTL      time.Duration `validate:"gt=0"`
	TokenTTL        time.Duration `validate:"gt=0"`
	SweepInterval   time.Duration `validate:"gt=0"`
	RedeemRateLimit int           `validate:"gte=0"`
	ArgonMemory     uint32        `validate:"gte=8"`
	ArgonTime       uint32        `validate:"gte=1"`
	ArgonThreads    uint8         `validate:"gte=1"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=json text zap"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SessionSecret and HomeURL must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.HomeURL = "http://localhost:8080"
	c.AfterLoginPath = "/"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "magiclink.db"
	c.TokenStore = TokenStoreSQL
	c.RedisAddr = "localhost:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.SessionSecret = "secretKey"
	c.SessionTTL = 12 * time.Hour
	c.TokenTTL = 5 * time.Minute
	c.SweepInterval = time.Minute
	c.RedeemRateLimit = 30
	c.ArgonMemory = cryptox.DefaultParams.Memory
	c.ArgonTime = cryptox.DefaultParams.Time
	c.ArgonThreads = cryptox.DefaultParams.Threads
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that HomeURL is an absolute
// http(s) URL.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := netx.HostOf(c.HomeURL); err != nil {
		return fmt.Errorf("invalid config: home url: %w", err)
	}
	return nil
}

// Domain is the host part of HomeURL.
func (c *Config) Domain() string {
	host, err := netx.HostOf(c.HomeURL)
	if err != nil {
		return ""
	}
	return host
}

// ArgonParams returns the configured argon2id cost.
func (c *Config) ArgonParams() cryptox.Params {
	return cryptox.Params{Memory: c.ArgonMemory, Time: c.ArgonTime, Threads: c.ArgonThreads}
}
