package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"chat-app-agent/internal/api"
	"chat-app-agent/internal/chatapi"
	"chat-app-agent/internal/dto"
	"chat-app-agent/internal/session"
	"chat-app-agent/internal/storage"
)

type StateEndpoints interface {
	Rooms(http.ResponseWriter, *http.Request) error
	ActiveRoomMessages(http.ResponseWriter, *http.Request) error
	Discussions(http.ResponseWriter, *http.Request) error
	ActiveDiscussionMessages(http.ResponseWriter, *http.Request) error
	Route(http.ResponseWriter, *http.Request) error
	Visibility(http.ResponseWriter, *http.Request) error
	SoundPreference(http.ResponseWriter, *http.Request) error
	Status(http.ResponseWriter, *http.Request) error
}

type stateEndpoints struct {
	state *api.State
}

func NewStateEndpoints(state *api.State) StateEndpoints {
	return &stateEndpoints{state: state}
}

func (h *stateEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListRooms,
	})
}

func (h *stateEndpoints) ActiveRoomMessages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return WriteJSON(w, http.StatusOK, dto.MessagesResponse{
				Owner:    h.state.RoomMessages.Owner(),
				Messages: h.state.RoomMessages.List(),
			})
		},
	})
}

func (h *stateEndpoints) Discussions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListDiscussions,
	})
}

func (h *stateEndpoints) ActiveDiscussionMessages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return WriteJSON(w, http.StatusOK, dto.MessagesResponse{
				Owner:    h.state.DiscussionMessages.Owner(),
				Messages: h.state.DiscussionMessages.List(),
			})
		},
	})
}

func (h *stateEndpoints) Route(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRoute,
	})
}

func (h *stateEndpoints) Visibility(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleVisibility,
	})
}

func (h *stateEndpoints) SoundPreference(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGetSound,
		http.MethodPut: h.handlePutSound,
	})
}

func (h *stateEndpoints) Status(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGetStatus,
		http.MethodPut: h.handlePutStatus,
	})
}

func (h *stateEndpoints) handleListRooms(w http.ResponseWriter, r *http.Request) error {
	rooms := h.state.Rooms.List()
	res := dto.RoomsResponse{Rooms: make([]dto.RoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		res.Rooms = append(res.Rooms, dto.RoomResponse{
			Room:        room,
			NewMessages: h.state.Rooms.NewMessages(room.UUID),
		})
	}
	if active, ok := h.state.Rooms.Active(); ok {
		res.Active = active.UUID
	}
	return WriteJSON(w, http.StatusOK, res)
}

func (h *stateEndpoints) handleListDiscussions(w http.ResponseWriter, r *http.Request) error {
	discussions := h.state.Discussions.List()
	res := dto.DiscussionsResponse{
		Discussions:    make([]dto.DiscussionResponse, 0, len(discussions)),
		NewDiscussions: h.state.Discussions.NewDiscussions(),
	}
	for _, d := range discussions {
		res.Discussions = append(res.Discussions, dto.DiscussionResponse{
			Discussion:  d,
			NewMessages: h.state.Discussions.NewMessages(d.UUID),
		})
	}
	if active, ok := h.state.Discussions.Active(); ok {
		res.Active = active.UUID
	}
	return WriteJSON(w, http.StatusOK, res)
}

func (h *stateEndpoints) handleRoute(w http.ResponseWriter, r *http.Request) error {
	var req dto.RouteRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.RoomID != "" && req.DiscussionID != "" {
		return badRequest("A route targets a room or a discussion, not both")
	}

	st := h.state
	st.Session.SetViewedAgent(req.ViewedAgent)

	switch {
	case req.RoomID != "":
		room, ok := st.Rooms.Get(req.RoomID)
		if !ok {
			return notFound("Room not found")
		}
		st.Session.Navigate(session.Route{RoomID: room.UUID})
		st.Rooms.SetActive(&room)
		st.Rooms.ResetNewMessages(room.UUID)
		st.Discussions.SetActive(nil)
		st.DiscussionMessages.Reset()

		msgs, err := st.Backend.ListRoomMessages(r.Context(), room.UUID)
		if err != nil {
			return loadError(err, "room", room.UUID)
		}
		st.RoomMessages.Open(room.UUID, msgs)
		return WriteJSON(w, http.StatusOK, dto.RouteResponse{RoomID: room.UUID, ViewedAgent: req.ViewedAgent, Messages: len(msgs)})

	case req.DiscussionID != "":
		d, ok := st.Discussions.Get(req.DiscussionID)
		if !ok {
			return notFound("Discussion not found")
		}
		st.Session.Navigate(session.Route{DiscussionID: d.UUID})
		st.Discussions.SetActive(&d)
		st.Rooms.SetActive(nil)
		st.RoomMessages.Reset()

		msgs, err := st.Backend.ListDiscussionMessages(r.Context(), d.UUID)
		if err != nil {
			return loadError(err, "discussion", d.UUID)
		}
		st.DiscussionMessages.Open(d.UUID, msgs)
		return WriteJSON(w, http.StatusOK, dto.RouteResponse{DiscussionID: d.UUID, ViewedAgent: req.ViewedAgent, Messages: len(msgs)})
	}

	st.Session.NavigateHome()
	st.Rooms.SetActive(nil)
	st.Discussions.SetActive(nil)
	st.RoomMessages.Reset()
	st.DiscussionMessages.Reset()
	return WriteJSON(w, http.StatusOK, dto.RouteResponse{ViewedAgent: req.ViewedAgent})
}

func loadError(err error, kind, uuid string) error {
	if errors.Is(err, chatapi.ErrCanceled) {
		return &HTTPError{
			StatusCode: http.StatusConflict,
			Message:    "Superseded by a newer navigation",
		}
	}
	return &HTTPError{
		StatusCode: http.StatusBadGateway,
		Message:    "Could not load messages",
		ErrorLog:   fmt.Errorf("load %s %s messages: %w", kind, uuid, err),
	}
}

func (h *stateEndpoints) handleVisibility(w http.ResponseWriter, r *http.Request) error {
	var req dto.VisibilityRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Visible == nil {
		return badRequest("visible is required")
	}
	h.state.Session.SetVisible(*req.Visible)
	return WriteJSON(w, http.StatusOK, req)
}

func (h *stateEndpoints) soundPreference(r *http.Request) (dto.SoundPreference, error) {
	value, err := h.state.Prefs.Lookup(r.Context(), storage.KeySound, storage.ScopeLocal)
	if err != nil {
		return dto.SoundPreference{}, err
	}
	if value == "" {
		value = storage.SoundOn
	}
	return dto.SoundPreference{Sound: value, Enabled: value != storage.SoundOff}, nil
}

func (h *stateEndpoints) handleGetSound(w http.ResponseWriter, r *http.Request) error {
	pref, err := h.soundPreference(r)
	if err != nil {
		return err
	}
	return WriteJSON(w, http.StatusOK, pref)
}

func (h *stateEndpoints) handlePutSound(w http.ResponseWriter, r *http.Request) error {
	var req dto.SoundPreference
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Sound != storage.SoundOn && req.Sound != storage.SoundOff {
		return badRequest(`sound must be "yes" or "no"`)
	}
	if err := h.state.Prefs.Set(r.Context(), storage.KeySound, req.Sound, storage.ScopeLocal); err != nil {
		return err
	}
	return WriteJSON(w, http.StatusOK, dto.SoundPreference{Sound: req.Sound, Enabled: req.Sound == storage.SoundOn})
}

func (h *stateEndpoints) statusKey() string {
	return storage.AgentStatusKey(h.state.Session.Snapshot().ProjectUUID)
}

func (h *stateEndpoints) handleGetStatus(w http.ResponseWriter, r *http.Request) error {
	persisted, err := h.state.Prefs.Lookup(r.Context(), h.statusKey(), storage.ScopeSession)
	if err != nil {
		return err
	}
	return WriteJSON(w, http.StatusOK, dto.StatusResponse{
		Status:             h.state.Config.Status(),
		Persisted:          persisted,
		DisconnectedAgents: h.state.Config.DisconnectedAgents(),
	})
}

func (h *stateEndpoints) handlePutStatus(w http.ResponseWriter, r *http.Request) error {
	var req dto.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return badRequest("status is required")
	}

	if err := h.state.Backend.UpdateStatus(r.Context(), req.Status); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadGateway,
			Message:    "Could not update status",
			ErrorLog:   fmt.Errorf("update status: %w", err),
		}
	}
	h.state.Config.SetStatus(req.Status)
	if err := h.state.Prefs.Set(r.Context(), h.statusKey(), req.Status, storage.ScopeSession); err != nil {
		return err
	}
	return WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: req.Status, Persisted: req.Status})
}
