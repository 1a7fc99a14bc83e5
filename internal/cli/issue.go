package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
)

// issue mints a link for one account and prints it.
func (a *App) issue(ctx context.Context, args []string) error {
	fs := a.newFlagSet("issue")
	urlOnly := fs.Bool("url-only", false, "print only the URL")
	launch := fs.Bool("launch", false, "open the URL in the default browser")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: issue takes exactly one account locator", errUsage)
	}

	account, err := a.accounts.ResolveRaw(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	link, err := a.links.Issue(ctx, account)
	if err != nil {
		return err
	}

	if *urlOnly {
		fmt.Fprintln(a.stdout, link.URL)
	} else {
		fmt.Fprintf(a.stdout, "Magic login link for %s (expires in %s):\n%s\n", account.Login, link.TTL, link.URL)
	}

	if a.config.TokenStore == config.TokenStoreMemory {
		fmt.Fprintln(a.stderr, "warning: token store is in-memory; the link only works while this process runs")
	}

	if *launch {
		if err := a.openURL(link.URL); err != nil {
			fmt.Fprintf(a.stderr, "warning: %v\n", fmt.Errorf("%w: %w", common.ErrLaunchFailed, err))
		}
	}

	return nil
}
