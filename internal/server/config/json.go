package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/magiclink/internal/flagx"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

// JsonConfig is the on-disk shape of a JSON config file. Duration fields use
// timex.Duration so both "5m" and integer nanoseconds are accepted. Fields
// left out of the file keep their zero value and do not override anything.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	HomeURL         string         `json:"home_url"`
	AfterLoginPath  string         `json:"after_login_path"`
	DatabaseDriver  string         `json:"database_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	TokenStore      string         `json:"token_store"`
	RedisAddr       string         `json:"redis_addr"`
	RedisPassword   string         `json:"redis_password"`
	RedisDB         int            `json:"redis_db"`
	SessionSecret   string         `json:"session_secret"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	TokenTTL        timex.Duration `json:"token_ttl"`
	SweepInterval   timex.Duration `json:"sweep_interval"`
	RedeemRateLimit *int           `json:"redeem_rate_limit"`
	ArgonMemory     uint32         `json:"argon_memory"`
	ArgonTime       uint32         `json:"argon_time"`
	ArgonThreads    uint8          `json:"argon_threads"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson loads values from the JSON file named by -c/-config (or
// $MAGICLINK_CONFIG) into config. With no file configured it does nothing.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.HomeURL, c.HomeURL)
	setString(&config.AfterLoginPath, c.AfterLoginPath)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.TokenStore, c.TokenStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	// pointer so that an explicit 0 can disable throttling
	if c.RedeemRateLimit != nil {
		config.RedeemRateLimit = *c.RedeemRateLimit
	}
	if c.ArgonMemory != 0 {
		config.ArgonMemory = c.ArgonMemory
	}
	if c.ArgonTime != 0 {
		config.ArgonTime = c.ArgonTime
	}
	if c.ArgonThreads != 0 {
		config.ArgonThreads = c.ArgonThreads
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
