package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "marctool",
		Usage: "Inspect, convert and maintain MARC record files",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			countCmd(),
			dumpCmd(),
			convertCmd(),
			indexCmd(),
			extractCmd(),
			appendCmd(),
			eraseCmd(),
			retagCmd(),
			queryCmd(),
			archiveCmd(),
			restoreCmd(),
			validateCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//
// end of file
//
