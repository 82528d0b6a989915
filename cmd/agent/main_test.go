package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	internaljwt "chat-app-agent/internal/jwt"
	"chat-app-agent/internal/listener"
	"chat-app-agent/internal/model"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/storage"
	"chat-app-agent/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseScope(t *testing.T) {
	s, err := parseScope("session")
	require.NoError(t, err)
	assert.Equal(t, storage.ScopeSession, s)

	_, err = parseScope("global")
	assert.Error(t, err)
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("AGENT_API_SECRET", "test-secret")
	t.Setenv("AGENT_EMAIL", "me@x.io")

	var out bytes.Buffer
	app := &cli.App{
		Writer:   &out,
		Flags:    []cli.Flag{&cli.StringFlag{Name: "env-file", Value: "does-not-exist.env"}},
		Commands: []*cli.Command{tokenCommand()},
	}
	require.NoError(t, app.Run([]string{"agent", "token", "--ttl", "1m"}))

	var res internaljwt.TokenResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))

	signer, err := internaljwt.NewSigner("test-secret")
	require.NoError(t, err)
	claims, err := signer.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "me@x.io", claims["email"])
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("AGENT_API_SECRET", "")
	t.Setenv("AGENT_EMAIL", "me@x.io")

	app := &cli.App{
		Writer:   &bytes.Buffer{},
		Flags:    []cli.Flag{&cli.StringFlag{Name: "env-file", Value: "does-not-exist.env"}},
		Commands: []*cli.Command{tokenCommand()},
	}
	assert.Error(t, app.Run([]string{"agent", "token"}))
}

func prefsApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Writer:   out,
		Flags:    []cli.Flag{&cli.StringFlag{Name: "env-file", Value: "does-not-exist.env"}},
		Commands: []*cli.Command{prefsCommand()},
	}
}

func TestPrefsCommandRoundTripsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("AGENT_EMAIL", "me@x.io")
	t.Setenv("CHAT_REDIS_URL", mr.Addr())
	t.Setenv("AGENT_PREFS_TABLE", "")
	t.Setenv("DYNAMODB_ENDPOINT", "")

	var out bytes.Buffer
	require.NoError(t, prefsApp(&out).Run([]string{"agent", "prefs", "set", "sound", "false"}))
	assert.True(t, mr.Exists("agent:me@x.io:sound"))

	require.NoError(t, prefsApp(&out).Run([]string{"agent", "prefs", "get", "sound"}))
	assert.Equal(t, "false\n", out.String())

	require.NoError(t, prefsApp(&out).Run([]string{"agent", "prefs", "delete", "sound"}))
	assert.Error(t, prefsApp(&out).Run([]string{"agent", "prefs", "get", "sound"}))
}

func TestPrefsCommandRequiresBackend(t *testing.T) {
	t.Setenv("AGENT_EMAIL", "me@x.io")
	t.Setenv("CHAT_REDIS_URL", "")
	t.Setenv("AGENT_PREFS_TABLE", "")
	t.Setenv("DYNAMODB_ENDPOINT", "")

	err := prefsApp(&bytes.Buffer{}).Run([]string{"agent", "prefs", "get", "sound"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAT_REDIS_URL")
}

func TestClosingRoutedDiscussionClosesMessageLists(t *testing.T) {
	sess := session.New("me@x.io", "p1")
	rooms := store.NewRooms()
	discussions := store.NewDiscussions()
	roomMessages := store.NewMessages()
	discussionMessages := store.NewMessages()

	d := model.Discussion{UUID: "d1", Room: "r1"}
	discussions.Add(d)
	discussions.SetActive(&d)
	discussionMessages.Open("d1", []model.Message{{UUID: "m1", Discussion: "d1"}})
	roomMessages.Open("r1", []model.Message{{UUID: "m0", Room: "r1"}})
	sess.Navigate(session.Route{DiscussionID: "d1"})

	h := listener.New(listener.Deps{
		Rooms:              rooms,
		Discussions:        discussions,
		RoomMessages:       roomMessages,
		DiscussionMessages: discussionMessages,
		Config:             store.NewConfig(),
		Prefs:              storage.NewPreferences(nil, nil),
		Navigate:           homeNavigator(sess, roomMessages, discussionMessages),
		Logger:             zerolog.Nop(),
	})
	content, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, h.Dispatch(context.Background(), listener.DiscussionsClose, content, sess.Snapshot()))

	assert.True(t, sess.Snapshot().Route.IsHome())
	assert.Empty(t, discussionMessages.Owner())
	assert.Empty(t, discussionMessages.List())
	assert.Empty(t, roomMessages.Owner())
}

func TestListenFlagReadsEnvironment(t *testing.T) {
	t.Setenv("AGENT_LISTEN_ADDR", ":9999")

	listen := func(args ...string) string {
		var got string
		cmd := runCommand()
		cmd.Action = func(c *cli.Context) error {
			got = c.String("listen")
			return nil
		}
		app := &cli.App{Writer: &bytes.Buffer{}, Commands: []*cli.Command{cmd}}
		require.NoError(t, app.Run(append([]string{"agent", "run"}, args...)))
		return got
	}

	assert.Equal(t, ":9999", listen())
	assert.Equal(t, ":7000", listen("--listen", ":7000"))
}
