package dto

import "chat-app-agent/internal/model"

type RoomResponse struct {
	model.Room
	NewMessages []model.NewMessage `json:"newMessages"`
}

type RoomsResponse struct {
	Rooms  []RoomResponse `json:"rooms"`
	Active string         `json:"active,omitempty"`
}

type DiscussionResponse struct {
	model.Discussion
	NewMessages int `json:"newMessages"`
}

type DiscussionsResponse struct {
	Discussions    []DiscussionResponse `json:"discussions"`
	Active         string               `json:"active,omitempty"`
	NewDiscussions int                  `json:"newDiscussions"`
}

type MessagesResponse struct {
	Owner    string          `json:"owner,omitempty"`
	Messages []model.Message `json:"messages"`
}

type RouteRequest struct {
	RoomID       string `json:"roomId,omitempty"`
	DiscussionID string `json:"discussionId,omitempty"`
	ViewedAgent  string `json:"viewedAgent,omitempty"`
}

type RouteResponse struct {
	RoomID       string `json:"roomId,omitempty"`
	DiscussionID string `json:"discussionId,omitempty"`
	ViewedAgent  string `json:"viewedAgent,omitempty"`
	Messages     int    `json:"messages"`
}

type VisibilityRequest struct {
	Visible *bool `json:"visible"`
}

type SoundPreference struct {
	Sound   string `json:"sound"`
	Enabled bool   `json:"enabled"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Status             string            `json:"status"`
	Persisted          string            `json:"persisted,omitempty"`
	DisconnectedAgents map[string]string `json:"disconnectedAgents,omitempty"`
}
