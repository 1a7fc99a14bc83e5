package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name read here.
const EnvPrefix = "MAGICLINK_"

// loadDotEnv is a seam so tests do not pick up a developer's .env file.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays settings from MAGICLINK_* environment variables, after
// loading a .env file from the working directory if one exists. Unset or
// unparsable variables leave the current value untouched.
func parseEnv(config *Config) {
	loadDotEnv()

	config.HTTPAddr = getEnvString("HTTP_ADDR", config.HTTPAddr)
	config.GRPCAddr = getEnvString("GRPC_ADDR", config.GRPCAddr)
	config.HomeURL = getEnvString("HOME_URL", config.HomeURL)
	config.AfterLoginPath = getEnvString("AFTER_LOGIN_PATH", config.AfterLoginPath)
	config.DatabaseDriver = getEnvString("DATABASE_DRIVER", config.DatabaseDriver)
	config.DatabaseDSN = getEnvString("DATABASE_DSN", config.DatabaseDSN)
	config.TokenStore = getEnvString("TOKEN_STORE", config.TokenStore)
	config.RedisAddr = getEnvString("REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = getEnvString("REDIS_PASSWORD", config.RedisPassword)
	config.RedisDB = getEnvInt("REDIS_DB", config.RedisDB)
	config.SessionSecret = getEnvString("SESSION_SECRET", config.SessionSecret)
	config.SessionTTL = getEnvDuration("SESSION_TTL", config.SessionTTL)
	config.TokenTTL = getEnvDuration("TOKEN_TTL", config.TokenTTL)
	config.SweepInterval = getEnvDuration("SWEEP_INTERVAL", config.SweepInterval)
	config.RedeemRateLimit = getEnvInt("REDEEM_RATE_LIMIT", config.RedeemRateLimit)
	config.ArgonMemory = uint32(getEnvInt("ARGON_MEMORY", int(config.ArgonMemory)))
	config.ArgonTime = uint32(getEnvInt("ARGON_TIME", int(config.ArgonTime)))
	config.ArgonThreads = uint8(getEnvInt("ARGON_THREADS", int(config.ArgonThreads)))
	config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	config.LogFormat = getEnvString("LOG_FORMAT", config.LogFormat)
}

func getEnvString(key, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
