package listener

import (
	"context"
	"time"

	"chat-app-agent/internal/session"
	"chat-app-agent/internal/storage"
)

const (
	fromSystem = "system"
	fromUser   = "user"

	statusSyncTimeout = 10 * time.Second
)

type StatusPayload struct {
	From   string `json:"from"`
	Status string `json:"status"`
}

type DisconnectPayload struct {
	UserDisconnectedAgent string `json:"user_disconnected_agent"`
	Status                string `json:"status"`
}

func (h *Handlers) StatusUpdate(ctx context.Context, p StatusPayload, app *session.Context) {
	key := storage.AgentStatusKey(app.ProjectUUID)
	persisted, err := h.deps.Prefs.Lookup(ctx, key, storage.ScopeSession)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("reading persisted status failed")
		return
	}
	if p.Status == persisted {
		return
	}

	switch p.From {
	case fromSystem:
		if persisted == "" {
			return
		}
		h.deps.Config.SetStatus(persisted)
		h.syncStatus(persisted)
	case fromUser:
		h.deps.Config.SetStatus(p.Status)
		if err := h.deps.Prefs.Set(ctx, key, p.Status, storage.ScopeSession); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("persisting status failed")
		}
	default:
		h.logger.Debug().Str("from", p.From).Msg("ignoring status update from unknown origin")
	}
}

// syncStatus runs off the read loop so a slow backend never delays frames.
func (h *Handlers) syncStatus(status string) {
	if h.deps.StatusSync == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), statusSyncTimeout)
		defer cancel()
		if err := h.deps.StatusSync.UpdateStatus(ctx, status); err != nil {
			h.logger.Warn().Err(err).Str("status", status).Msg("status sync failed")
		}
	}()
}

func (h *Handlers) StatusClose(_ context.Context, p DisconnectPayload, _ *session.Context) {
	if p.UserDisconnectedAgent == "" || p.Status == "" {
		return
	}
	h.deps.Config.SetDisconnectedAgent(p.UserDisconnectedAgent, p.Status)
}
