// Package session holds the signed-in agent's identity, the current route and
// the supervisor view-mode target.
package session

import "sync"

type Route struct {
	RoomID       string `json:"roomId,omitempty"`
	DiscussionID string `json:"discussionId,omitempty"`
}

func (r Route) IsHome() bool {
	return r.RoomID == "" && r.DiscussionID == ""
}

// Context is the read-only view handed to event handlers.
type Context struct {
	MeEmail          string
	ProjectUUID      string
	Route            Route
	ViewedAgentEmail string
}

func (c *Context) InViewMode() bool {
	return c != nil && c.ViewedAgentEmail != ""
}

type Session struct {
	mu          sync.RWMutex
	meEmail     string
	projectUUID string
	route       Route
	viewedAgent string
	visible     bool
}

func New(meEmail, projectUUID string) *Session {
	return &Session{
		meEmail:     meEmail,
		projectUUID: projectUUID,
		visible:     true,
	}
}

func (s *Session) Snapshot() *Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Context{
		MeEmail:          s.meEmail,
		ProjectUUID:      s.projectUUID,
		Route:            s.route,
		ViewedAgentEmail: s.viewedAgent,
	}
}

func (s *Session) Navigate(route Route) {
	s.mu.Lock()
	s.route = route
	s.mu.Unlock()
}

func (s *Session) NavigateHome() {
	s.Navigate(Route{})
}

func (s *Session) SetViewedAgent(email string) {
	s.mu.Lock()
	s.viewedAgent = email
	s.mu.Unlock()
}

// SetVisible records whether the UI shell is in the foreground.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

func (s *Session) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}
