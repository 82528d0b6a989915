package listener

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-app-agent/internal/notify"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/websocket"

	"github.com/rs/zerolog"
)

// Subscriber is the registration half of the websocket client.
type Subscriber interface {
	On(action string, l websocket.Listener)
}

// AppSource hands out the session context a handler runs against.
type AppSource interface {
	Snapshot() *session.Context
}

type binding func(h *Handlers, ctx context.Context, content json.RawMessage, app *session.Context) error

func bind[T any](fn func(*Handlers, context.Context, T, *session.Context)) binding {
	return func(h *Handlers, ctx context.Context, content json.RawMessage, app *session.Context) error {
		var payload T
		if err := json.Unmarshal(content, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		fn(h, ctx, payload, app)
		return nil
	}
}

var bindings = [actionCount]binding{
	RoomsCreate:         bind((*Handlers).RoomCreate),
	RoomsUpdate:         bind((*Handlers).RoomUpdate),
	RoomsClose:          bind((*Handlers).RoomClose),
	MsgCreate:           bind((*Handlers).MessageCreate),
	MsgUpdate:           bind((*Handlers).MessageUpdate),
	DiscussionsCreate:   bind((*Handlers).DiscussionCreate),
	DiscussionsUpdate:   bind((*Handlers).DiscussionUpdate),
	DiscussionsClose:    bind((*Handlers).DiscussionClose),
	DiscussionMsgCreate: bind((*Handlers).DiscussionMessageCreate),
	StatusUpdate:        bind((*Handlers).StatusUpdate),
	StatusClose:         bind((*Handlers).StatusClose),
}

// Handlers reacts to backend events by mutating the injected stores.
type Handlers struct {
	deps   Deps
	logger zerolog.Logger
}

func New(deps Deps) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "listener").Logger(),
	}
}

// Dispatch decodes content for action and runs its handler against app.
func (h *Handlers) Dispatch(ctx context.Context, action Action, content json.RawMessage, app *session.Context) error {
	if action >= actionCount {
		return fmt.Errorf("unknown action %d", action)
	}
	if app == nil {
		app = &session.Context{}
	}
	if err := bindings[action](h, ctx, content, app); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// Register subscribes every action on sub. Each frame is handled against a
// fresh snapshot of app.
func Register(ctx context.Context, sub Subscriber, h *Handlers, app AppSource) {
	for _, action := range Actions() {
		sub.On(action.String(), func(content json.RawMessage) {
			if err := h.Dispatch(ctx, action, content, app.Snapshot()); err != nil {
				h.logger.Warn().Err(err).Msg("dropping event")
			}
		})
	}
}

func (h *Handlers) sound(ctx context.Context, name notify.SoundName) {
	if h.deps.Sounds == nil {
		return
	}
	h.deps.Sounds.Notify(ctx, name)
}

func (h *Handlers) visible() bool {
	if h.deps.Visibility == nil {
		return true
	}
	return h.deps.Visibility.Visible()
}

func (h *Handlers) navigateHome() {
	if h.deps.Navigate != nil {
		h.deps.Navigate()
	}
}
