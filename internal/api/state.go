package api

import (
	"context"

	"chat-app-agent/internal/model"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/storage"
	"chat-app-agent/internal/store"
)

// Backend is the slice of the chat REST API the state endpoints call.
type Backend interface {
	ListRoomMessages(ctx context.Context, roomUUID string) ([]model.Message, error)
	ListDiscussionMessages(ctx context.Context, discussionUUID string) ([]model.Message, error)
	UpdateStatus(ctx context.Context, status string) error
}

// State is everything the local API reads and mutates.
type State struct {
	Rooms              *store.Rooms
	Discussions        *store.Discussions
	RoomMessages       *store.Messages
	DiscussionMessages *store.Messages
	Config             *store.Config
	Session            *session.Session
	Prefs              *storage.Preferences
	Backend            Backend
}
