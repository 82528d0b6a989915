package main

import (
	"errors"
	"fmt"

	"chat-app-agent/internal/env"
	"chat-app-agent/internal/logging"
	"chat-app-agent/internal/storage"

	"github.com/urfave/cli/v2"
)

// prefsCommand reads and writes stored preferences through the same backends
// the running agent uses.
func prefsCommand() *cli.Command {
	scopeFlag := &cli.StringFlag{
		Name:  "scope",
		Usage: "Preference scope, `local` or `session`",
		Value: "local",
	}

	return &cli.Command{
		Name:  "prefs",
		Usage: "Inspect or change stored agent preferences",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a preference value",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{scopeFlag},
				Action: func(c *cli.Context) error {
					return withPrefs(c, func(p *storage.Preferences, scope storage.Scope, key string) error {
						val, err := p.Get(c.Context, key, scope)
						if errors.Is(err, storage.ErrNotFound) {
							return fmt.Errorf("%s is not set", key)
						}
						if err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, val)
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Store a preference value",
				ArgsUsage: "KEY VALUE",
				Flags:     []cli.Flag{scopeFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return errors.New("set takes KEY and VALUE")
					}
					return withPrefs(c, func(p *storage.Preferences, scope storage.Scope, key string) error {
						return p.Set(c.Context, key, c.Args().Get(1), scope)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a preference",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{scopeFlag},
				Action: func(c *cli.Context) error {
					return withPrefs(c, func(p *storage.Preferences, scope storage.Scope, key string) error {
						return p.Delete(c.Context, key, scope)
					})
				},
			},
		},
	}
}

func parseScope(name string) (storage.Scope, error) {
	switch name {
	case "local":
		return storage.ScopeLocal, nil
	case "session":
		return storage.ScopeSession, nil
	}
	return 0, fmt.Errorf("unknown scope %q", name)
}

func withPrefs(c *cli.Context, fn func(*storage.Preferences, storage.Scope, string) error) error {
	env.Load(c.String("env-file"))
	if err := env.Required(env.AgentEmail); err != nil {
		return err
	}
	if c.NArg() < 1 {
		return errors.New("missing preference KEY")
	}
	scope, err := parseScope(c.String("scope"))
	if err != nil {
		return err
	}

	if env.Get(env.ChatRedisURL) == "" && env.Get(env.PrefsTable) == "" && env.Get(env.DynamoDBEndpoint) == "" {
		return errors.New("no preference backend configured, set CHAT_REDIS_URL or AGENT_PREFS_TABLE")
	}

	logger := logging.New(env.GetOrDefault(env.LogLevel, "warn"), env.GetBool(env.LogPretty))
	redisClient, err := connectRedis(c.Context)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	prefs, err := preferences(c.Context, logger, redisClient, env.Get(env.AgentEmail))
	if err != nil {
		return err
	}
	return fn(prefs, scope, c.Args().First())
}
