package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/flagx"
)

// Flags lists every flag parseFlags understands. The CLI strips these from
// its arguments before parsing its own subcommand flags.
var Flags = []string{
	"-a", "-g", "-u", "-D", "-d", "-t", "-r", "-s", "-T", "-l", "-f",
	"-c", "-config",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP listen address (e.g. ":8080")
//	-g string   gRPC health listen address (e.g. ":50051")
//	-u string   home URL (e.g. "https://example.com")
//	-D string   database driver: postgres | sqlite
//	-d string   database DSN
//	-t string   token store: sql | redis | memory
//	-r string   Redis address
//	-s string   session token HMAC secret
//	-T int      magic token lifetime, seconds
//	-l string   log level
//	-f string   log format: json | text | zap
//
// os.Args is first filtered down to these flags with flagx.FilterArgs so that
// subcommands and their flags do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-u", "-D", "-d", "-t", "-r", "-s", "-T", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&config.HomeURL, "u", config.HomeURL, "home URL")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenStore, "t", config.TokenStore, "token store (sql|redis|memory)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")

	tokenTTL := fs.Int("T", int(config.TokenTTL.Seconds()), "magic token lifetime (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|text|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Second
}
