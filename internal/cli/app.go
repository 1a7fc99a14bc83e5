// Package cli implements the magiclink operator commands:
//
//	magiclink issue [--url-only] [--launch] <login|email|id>
//	magiclink invalidate
//	magiclink toggle <on|off>
//	magiclink accounts add <login> <email>
//
// Commands print their result on stdout. Errors go to stderr and make Run
// return exit status 1.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/magiclink/internal/server/services"
	"github.com/dmitrijs2005/magiclink/internal/timex"
	"github.com/pkg/browser"
	"github.com/spf13/pflag"
)

const usage = `Usage: magiclink [config flags] <command> [args]

Commands:
  issue [--url-only] [--launch] <login|email|id>
                          mint a single-use login link for an account
  invalidate              revoke every outstanding link
  toggle <on|off>         switch magic login on or off for the site
  accounts add <login> <email>
                          create an account

Config flags (-u, -D, -d, -t, -r, -T, -c, ...) are shared with the server.
`

// errUsage marks argument errors; Run prints the usage text after them.
var errUsage = errors.New("usage")

type App struct {
	config     *config.Config
	stores     *repomanager.Stores
	accounts   *services.AccountService
	capability *services.CapabilityService
	links      *services.MagicLinkService
	logger     logging.Logger

	stdout  io.Writer
	stderr  io.Writer
	openURL func(string) error
}

// NewApp opens the configured stores and builds the services on top.
func NewApp(ctx context.Context, c *config.Config, stdout, stderr io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, stderr)
	if err != nil {
		return nil, err
	}

	stores, err := repomanager.OpenStores(ctx, c, timex.SystemClock)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, stores, stdout, stderr, logger), nil
}

func newApp(c *config.Config, stores *repomanager.Stores, stdout, stderr io.Writer, logger logging.Logger) *App {
	capability := services.NewCapabilityService(stores.Options)
	secrets := services.NewSecretRegistry(stores.Options, logger)

	return &App{
		config:     c,
		stores:     stores,
		accounts:   services.NewAccountService(stores.Accounts),
		capability: capability,
		links: services.NewMagicLinkService(secrets, stores.Tokens, capability,
			services.SettingsFromConfig(c), timex.SystemClock, logger),
		logger:  logger,
		stdout:  stdout,
		stderr:  stderr,
		openURL: browser.OpenURL,
	}
}

// Close releases the stores.
func (a *App) Close() error {
	return a.stores.Close()
}

// Run executes the command in args and returns the process exit status.
func (a *App) Run(ctx context.Context, args []string) int {
	if err := a.dispatch(ctx, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(a.stderr, usage)
		}
		return 1
	}
	return 0
}

func (a *App) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "issue":
		return a.issue(ctx, rest)
	case "invalidate":
		return a.invalidate(ctx, rest)
	case "toggle":
		return a.toggle(ctx, rest)
	case "accounts":
		return a.accountsCmd(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// prints its defaults on stderr.
func (a *App) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}
