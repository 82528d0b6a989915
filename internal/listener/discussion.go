package listener

import (
	"context"

	"chat-app-agent/internal/model"
	"chat-app-agent/internal/notify"
	"chat-app-agent/internal/session"
)

func (h *Handlers) DiscussionCreate(ctx context.Context, d model.Discussion, app *session.Context) {
	if d.CreatedBy == app.MeEmail {
		return
	}
	if !h.deps.Discussions.Add(d) {
		return
	}
	h.deps.Discussions.IncrementNewDiscussions()
	h.sound(ctx, notify.SoundAchievement)
}

func (h *Handlers) DiscussionUpdate(ctx context.Context, d model.Discussion, app *session.Context) {
	if len(d.AddedAgents) >= 2 && !d.HasAgent(app.MeEmail) {
		h.leaveDiscussion(d.UUID, app)
		return
	}

	if _, ok := h.deps.Discussions.Get(d.UUID); ok {
		h.deps.Discussions.Update(d)
	} else if d.CreatedBy != app.MeEmail {
		h.deps.Discussions.Add(d)
		h.sound(ctx, notify.SoundAchievement)
	}

	if active, ok := h.deps.Discussions.Active(); ok && active.UUID == d.UUID {
		h.deps.Discussions.SetActive(&d)
		// Room and discussion views are exclusive.
		h.deps.Rooms.SetActive(nil)
	}
}

// leaveDiscussion drops a discussion the agent is no longer part of and
// sends the UI home if it was on screen.
func (h *Handlers) leaveDiscussion(uuid string, app *session.Context) {
	active, ok := h.deps.Discussions.Active()
	onScreen := (ok && active.UUID == uuid) || app.Route.DiscussionID == uuid
	h.deps.Discussions.Remove(uuid)
	if !onScreen {
		return
	}
	h.deps.Discussions.SetActive(nil)
	h.navigateHome()
}

func (h *Handlers) DiscussionClose(_ context.Context, d model.Discussion, app *session.Context) {
	h.deps.Discussions.Remove(d.UUID)
	if d.UUID == "" || app.Route.DiscussionID != d.UUID {
		return
	}
	h.deps.Discussions.SetActive(nil)
	h.deps.Rooms.SetActive(nil)
	h.navigateHome()
}

func (h *Handlers) DiscussionMessageCreate(ctx context.Context, msg model.Message, app *session.Context) {
	if msg.SentBy(app.MeEmail) {
		return
	}
	if active, ok := h.deps.Discussions.Active(); ok && active.UUID == msg.Discussion {
		h.deps.DiscussionMessages.Add(msg)
		return
	}
	if _, ok := h.deps.Discussions.Get(msg.Discussion); !ok {
		return
	}
	h.deps.Discussions.AddNewMessages(msg.Discussion)
	h.sound(ctx, notify.SoundPing)
}
