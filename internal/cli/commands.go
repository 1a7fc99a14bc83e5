package cli

import (
	"context"
	"fmt"
)

func (a *App) invalidate(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: invalidate takes no arguments", errUsage)
	}
	if err := a.links.Invalidate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "All outstanding magic login links have been invalidated.")
	return nil
}

func (a *App) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: toggle takes on or off", errUsage)
	}
	on, err := a.capability.Set(ctx, args[0])
	if err != nil {
		return err
	}
	state := "disabled"
	if on {
		state = "enabled"
	}
	fmt.Fprintf(a.stdout, "Magic login %s.\n", state)
	return nil
}

func (a *App) accountsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		return fmt.Errorf("%w: accounts add <login> <email>", errUsage)
	}
	if len(args) != 3 {
		return fmt.Errorf("%w: accounts add takes a login and an email", errUsage)
	}

	acc, err := a.accounts.Create(ctx, args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Created account %d (%s, %s)\n", acc.ID, acc.Login, acc.Email)
	return nil
}
