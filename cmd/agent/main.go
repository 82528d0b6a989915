package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "agent",
		Usage:   "Customer-service chat agent client",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Load environment from `FILE` before starting",
				Value:   ".env",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			tokenCommand(),
			prefsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
