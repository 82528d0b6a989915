package main

import (
	"encoding/json"
	"fmt"

	"chat-app-agent/internal/env"
	internaljwt "chat-app-agent/internal/jwt"

	"github.com/urfave/cli/v2"
)

// tokenCommand mints a bearer token for the local state API.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the local state API",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: internaljwt.DefaultTTL,
			},
		},
		Action: func(c *cli.Context) error {
			env.Load(c.String("env-file"))
			if err := env.Required(env.APISecret, env.AgentEmail); err != nil {
				return err
			}
			signer, err := internaljwt.NewSigner(env.Get(env.APISecret))
			if err != nil {
				return err
			}
			res, err := signer.CreateToken(env.Get(env.AgentEmail), c.Duration("ttl"))
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(out))
			return nil
		},
	}
}
