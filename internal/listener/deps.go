package listener

import (
	"context"

	"chat-app-agent/internal/model"
	"chat-app-agent/internal/notify"
	"chat-app-agent/internal/storage"
	"chat-app-agent/internal/store"

	"github.com/rs/zerolog"
)

type RoomStore interface {
	Get(uuid string) (model.Room, bool)
	Add(room model.Room) bool
	Update(room model.Room, opts store.UpdateOptions)
	Remove(uuid string)
	BringFront(uuid string)
	UpdateLastMessage(uuid string, msg model.Message)
	SetLastMessageUUID(uuid, messageUUID string)
	AddNewMessages(uuid string, msg model.NewMessage)
	ResetNewMessages(uuid string)
	Active() (model.Room, bool)
	SetActive(room *model.Room)
}

type DiscussionStore interface {
	Get(uuid string) (model.Discussion, bool)
	Add(d model.Discussion) bool
	Update(d model.Discussion) bool
	Remove(uuid string)
	Active() (model.Discussion, bool)
	SetActive(d *model.Discussion)
	IncrementNewDiscussions()
	AddNewMessages(uuid string)
}

type MessageStore interface {
	Add(msg model.Message) bool
	Upsert(msg model.Message)
}

type ConfigStore interface {
	SetStatus(status string)
	AutomaticRouting() bool
	SetDisconnectedAgent(agentEmail, status string)
}

type SoundNotifier interface {
	Notify(ctx context.Context, name notify.SoundName)
}

type Visibility interface {
	Visible() bool
}

// StatusSyncer pushes a reconciled agent status back to the backend.
type StatusSyncer interface {
	UpdateStatus(ctx context.Context, status string) error
}

// Deps carries every collaborator the handlers touch. Visibility, Desktop,
// Navigate and StatusSync are optional.
type Deps struct {
	Rooms              RoomStore
	Discussions        DiscussionStore
	RoomMessages       MessageStore
	DiscussionMessages MessageStore
	Config             ConfigStore
	Prefs              *storage.Preferences
	Sounds             SoundNotifier
	Desktop            notify.Desktop
	Visibility         Visibility
	Navigate           func()
	StatusSync         StatusSyncer
	Logger             zerolog.Logger
}
