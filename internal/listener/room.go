package listener

import (
	"context"

	"chat-app-agent/internal/model"
	"chat-app-agent/internal/notify"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/store"
)

func (h *Handlers) RoomCreate(ctx context.Context, room model.Room, app *session.Context) {
	if room.User.GetEmail() != app.MeEmail {
		return
	}
	if h.deps.Rooms.Add(room) {
		h.sound(ctx, notify.SoundSelect)
	}
}

func (h *Handlers) RoomUpdate(ctx context.Context, room model.Room, app *session.Context) {
	if _, ok := h.deps.Rooms.Get(room.UUID); !ok {
		h.deps.Rooms.Add(room)
		switch room.TransferAction() {
		case model.TransferActionTransfer:
			h.sound(ctx, notify.SoundAchievement)
		case model.TransferActionForward:
			h.sound(ctx, notify.SoundSelect)
		}
	}

	h.deps.Rooms.Update(room, store.UpdateOptions{
		UserEmail:        app.MeEmail,
		ViewedAgentEmail: app.ViewedAgentEmail,
		Navigate:         h.deps.Navigate,
	})

	if room.UnreadMsgs == 0 {
		h.deps.Rooms.ResetNewMessages(room.UUID)
	}
}

func (h *Handlers) RoomClose(_ context.Context, room model.Room, _ *session.Context) {
	h.deps.Rooms.Remove(room.UUID)
}

func (h *Handlers) MessageCreate(ctx context.Context, msg model.Message, app *session.Context) {
	room, _ := h.deps.Rooms.Get(msg.Room)
	h.deps.Rooms.BringFront(msg.Room)

	if msg.SentBy(app.MeEmail) {
		h.deps.Rooms.UpdateLastMessage(msg.Room, msg)
		return
	}

	structured := msg.HasStructuredPayload()
	if !msg.IsSystem() {
		if !h.deps.Config.AutomaticRouting() || room.User.GetEmail() == app.MeEmail {
			h.sound(ctx, notify.SoundPing)
		}
		if !structured && !h.visible() {
			h.showDesktop(ctx, room, msg)
		}
	}

	if h.roomOpen(msg.Room, app) {
		h.deps.RoomMessages.Add(msg)
	}

	if structured {
		return
	}
	// Media messages arrive empty first and are filled by a later msg.update.
	if msg.IsEmptyPlaceholder() {
		h.deps.Rooms.SetLastMessageUUID(msg.Room, msg.UUID)
		return
	}
	h.deps.Rooms.UpdateLastMessage(msg.Room, msg)
	h.deps.Rooms.AddNewMessages(msg.Room, model.NewMessage{
		CreatedOn: msg.CreatedOn,
		UUID:      msg.UUID,
		Text:      msg.Text,
	})
}

func (h *Handlers) MessageUpdate(_ context.Context, msg model.Message, app *session.Context) {
	if room, ok := h.deps.Rooms.Get(msg.Room); ok && room.LastMessage != nil && room.LastMessage.UUID == msg.UUID {
		h.deps.Rooms.UpdateLastMessage(room.UUID, msg)
	}
	if msg.SentBy(app.MeEmail) {
		return
	}
	h.deps.RoomMessages.Upsert(msg)
}

// roomOpen reports whether uuid is on screen, either routed to directly or
// watched by a supervisor in view mode.
func (h *Handlers) roomOpen(uuid string, app *session.Context) bool {
	if uuid == "" {
		return false
	}
	if app.Route.RoomID == uuid {
		return true
	}
	if !app.InViewMode() {
		return false
	}
	active, ok := h.deps.Rooms.Active()
	return ok && active.UUID == uuid
}

func (h *Handlers) showDesktop(ctx context.Context, room model.Room, msg model.Message) {
	if h.deps.Desktop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Str("room", msg.Room).Msg("desktop notification panicked")
		}
	}()

	title := room.Contact.Name
	if msg.Contact != nil && msg.Contact.Name != "" {
		title = msg.Contact.Name
	}
	n := notify.Notification{
		Title:    title,
		Body:     msg.Text,
		Icon:     msg.FirstMediaURL(),
		RoomUUID: msg.Room,
	}
	if err := h.deps.Desktop.Show(ctx, n); err != nil {
		h.logger.Warn().Err(err).Str("room", msg.Room).Msg("desktop notification failed")
	}
}
