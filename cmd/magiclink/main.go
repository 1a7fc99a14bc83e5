package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/magiclink/internal/cli"
	"github.com/dmitrijs2005/magiclink/internal/flagx"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg, os.Stdout, os.Stderr)

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	code := app.Run(ctx, flagx.StripArgs(os.Args[1:], config.Flags))
	if err := app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(code)

}
