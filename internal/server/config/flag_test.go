package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-g", "127.0.0.1:9091", "-u", "https://example.com",
			"-D", "postgres", "-d", "postgres://db", "-t", "redis", "-r", "redis:6379",
			"-s", "secret", "-T", "120", "-l", "debug", "-f", "text",
		}, expected: &Config{
			HTTPAddr:       "127.0.0.1:9090",
			GRPCAddr:       "127.0.0.1:9091",
			HomeURL:        "https://example.com",
			DatabaseDriver: "postgres",
			DatabaseDSN:    "postgres://db",
			TokenStore:     "redis",
			RedisAddr:      "redis:6379",
			SessionSecret:  "secret",
			TokenTTL:       2 * time.Minute,
			LogLevel:       "debug",
			LogFormat:      "text",
		}},
		{name: "subcommand and its flags are ignored", args: []string{"cmd",
			"issue", "--url-only", "-u", "https://example.com", "admin@example.com",
		}, expected: &Config{
			HomeURL: "https://example.com",
		}},
		{name: "bad int panics", args: []string{"cmd", "-T", "five"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
