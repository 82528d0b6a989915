package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-app-agent/internal/api"
	"chat-app-agent/internal/api/middleware"
	"chat-app-agent/internal/api/router"
	"chat-app-agent/internal/chatapi"
	"chat-app-agent/internal/database"
	"chat-app-agent/internal/env"
	internaljwt "chat-app-agent/internal/jwt"
	"chat-app-agent/internal/listener"
	"chat-app-agent/internal/logging"
	"chat-app-agent/internal/model"
	"chat-app-agent/internal/notify"
	"chat-app-agent/internal/queue"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/storage"
	"chat-app-agent/internal/store"
	"chat-app-agent/internal/websocket"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	apiPrefix      = "/api/agent/v1"
	preloadTimeout = 30 * time.Second
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Connect to the chat backend and serve the local state API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "Address for the local state API",
				Value:   ":8090",
				EnvVars: []string{env.ListenAddr},
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Workers for API requests and sound playback",
				Value: 4,
			},
		},
		Action: func(c *cli.Context) error {
			env.Load(c.String("env-file"))
			if err := env.Required(env.ChatWSURL, env.ChatAPIURL, env.AgentToken, env.AgentEmail, env.ProjectUUID); err != nil {
				return err
			}
			logger := logging.New(env.GetOrDefault(env.LogLevel, "info"), env.GetBool(env.LogPretty))

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, logger, c.String("listen"), c.Int("workers"))
		},
	}
}

func run(ctx context.Context, logger zerolog.Logger, listenAddr string, workers int) error {
	email := env.Get(env.AgentEmail)
	projectUUID := env.Get(env.ProjectUUID)
	logger = logger.With().Str("agent", email).Str("project", projectUUID).Logger()

	redisClient, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	prefs, err := preferences(ctx, logger, redisClient, email)
	if err != nil {
		return err
	}

	rooms := store.NewRooms()
	discussions := store.NewDiscussions()
	roomMessages := store.NewMessages()
	discussionMessages := store.NewMessages()
	config := store.NewConfig()
	sess := session.New(email, projectUUID)

	q := queue.NewRequestQueueManager(256, workers, logging.Component(logger, "queue"))
	defer q.Shutdown()

	var (
		player  notify.Player  = notify.LogPlayer{Logger: logging.Component(logger, "sound")}
		desktop notify.Desktop = notify.LogDesktop{Logger: logging.Component(logger, "desktop")}
	)
	if redisClient != nil {
		pub := notify.NewPublisher(redisClient, email)
		player, desktop = pub, pub
	}
	desktop = notify.NewQueuedDesktop(desktop, q, logging.Component(logger, "desktop"))
	sounds := notify.NewDispatcher(prefs, player, q, logging.Component(logger, "notify"))

	backend := chatapi.New(chatapi.Config{
		BaseURL:     env.Get(env.ChatAPIURL),
		Token:       env.Get(env.AgentToken),
		ProjectUUID: projectUUID,
	})
	preload(ctx, logger, backend, rooms, discussions, config)

	handlers := listener.New(listener.Deps{
		Rooms:              rooms,
		Discussions:        discussions,
		RoomMessages:       roomMessages,
		DiscussionMessages: discussionMessages,
		Config:             config,
		Prefs:              prefs,
		Sounds:             sounds,
		Desktop:            desktop,
		Visibility:         sess,
		Navigate:           homeNavigator(sess, roomMessages, discussionMessages),
		StatusSync:         backend,
		Logger:             logger,
	})

	ws := websocket.NewClient(websocket.Options{
		URL:    env.Get(env.ChatWSURL),
		Header: http.Header{"Authorization": {"Bearer " + env.Get(env.AgentToken)}},
		Logger: logging.Component(logger, "websocket"),
	})
	listener.Register(ctx, ws, handlers, sess)

	auth, err := apiAuth()
	if err != nil {
		return err
	}
	server := api.NewAPIServer(api.Options{
		ListenAddr: listenAddr,
		Queue:      q,
		Logger:     logger,
		CORS:       middleware.DefaultCORSConfig(env.GetList(env.AllowedOrigins)...),
		Auth:       auth,
		State: &api.State{
			Rooms:              rooms,
			Discussions:        discussions,
			RoomMessages:       roomMessages,
			DiscussionMessages: discussionMessages,
			Config:             config,
			Session:            sess,
			Prefs:              prefs,
			Backend:            backend,
		},
	}, router.UtilsRoutes(apiPrefix), router.StateRoutes(apiPrefix))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	apiErr := make(chan error, 1)
	go func() {
		err := server.Run(ctx)
		if err != nil {
			cancel()
		}
		apiErr <- err
	}()

	wsErr := ws.Run(ctx)
	if err := <-apiErr; err != nil {
		return fmt.Errorf("state api: %w", err)
	}
	if errors.Is(wsErr, context.Canceled) {
		logger.Info().Msg("shutting down")
		return nil
	}
	return wsErr
}

// homeNavigator sends the session home and closes every open message list.
func homeNavigator(sess *session.Session, open ...*store.Messages) func() {
	return func() {
		sess.NavigateHome()
		for _, m := range open {
			m.Reset()
		}
	}
}

func connectRedis(ctx context.Context) (*redis.Client, error) {
	addr := env.Get(env.ChatRedisURL)
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: env.Get(env.ChatRedisPass),
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// preferences picks the backing stores: DynamoDB for durable local values
// when a table is configured, Redis for the session scope, memory otherwise.
func preferences(ctx context.Context, logger zerolog.Logger, redisClient *redis.Client, email string) (*storage.Preferences, error) {
	var local, sessionKV storage.KeyValue
	if redisClient != nil {
		kv := storage.NewRedis(redisClient, email)
		local, sessionKV = kv, kv
	}

	table := env.Get(env.PrefsTable)
	if table == "" && env.Get(env.DynamoDBEndpoint) != "" {
		table = model.PreferencesTable
	}
	if table != "" {
		db, err := database.NewDatabase(ctx, database.ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		local = storage.NewDynamo(db, table, email)
	}

	logger.Info().
		Bool("redis", redisClient != nil).
		Str("dynamodb_table", table).
		Msg("preference stores ready")
	return storage.NewPreferences(local, sessionKV), nil
}

func apiAuth() (middleware.Middleware, error) {
	secret := env.Get(env.APISecret)
	if secret == "" {
		return nil, nil
	}
	signer, err := internaljwt.NewSigner(secret)
	if err != nil {
		return nil, err
	}
	return middleware.ValidateJWT(signer), nil
}

// preload fills the stores before the socket starts delivering events.
// Failures leave the stores empty and are only logged.
func preload(ctx context.Context, logger zerolog.Logger, backend *chatapi.Client, rooms *store.Rooms, discussions *store.Discussions, config *store.Config) {
	ctx, cancel := context.WithTimeout(ctx, preloadTimeout)
	defer cancel()

	if project, err := backend.GetProject(ctx); err != nil {
		logger.Warn().Err(err).Msg("loading project failed")
	} else {
		config.SetProject(project)
	}

	if list, err := backend.ListRooms(ctx); err != nil {
		logger.Warn().Err(err).Msg("loading rooms failed")
	} else {
		rooms.Replace(list)
	}

	if list, err := backend.ListDiscussions(ctx); err != nil {
		logger.Warn().Err(err).Msg("loading discussions failed")
	} else {
		discussions.Replace(list)
	}

	logger.Info().
		Int("rooms", rooms.Len()).
		Int("discussions", discussions.Len()).
		Bool("automatic_routing", config.AutomaticRouting()).
		Msg("state preloaded")
}
