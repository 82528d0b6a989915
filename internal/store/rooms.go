// Package store holds the client-side collections the UI renders from.
package store

import (
	"sync"

	"chat-app-agent/internal/model"
)

// UpdateOptions carries what Rooms.Update needs to decide whether the agent
// may keep seeing a room after it changed on the backend.
type UpdateOptions struct {
	UserEmail        string
	ViewedAgentEmail string
	// Navigate is called when the active room is taken away from the agent.
	Navigate func()
}

type Rooms struct {
	mu          sync.RWMutex
	rooms       []model.Room
	active      *model.Room
	newMessages map[string][]model.NewMessage
}

func NewRooms() *Rooms {
	return &Rooms{
		newMessages: make(map[string][]model.NewMessage),
	}
}

func (s *Rooms) indexOf(uuid string) int {
	for i := range s.rooms {
		if s.rooms[i].UUID == uuid {
			return i
		}
	}
	return -1
}

func (s *Rooms) List() []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Clone())
	}
	return out
}

func (s *Rooms) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Rooms) Get(uuid string) (model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(uuid)
	if i < 0 {
		return model.Room{}, false
	}
	return s.rooms[i].Clone(), true
}

// Add appends room unless a room with the same uuid is already held.
func (s *Rooms) Add(room model.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(room.UUID) >= 0 {
		return false
	}
	s.rooms = append(s.rooms, room.Clone())
	return true
}

// Replace swaps the whole collection, dropping duplicate uuids.
func (s *Rooms) Replace(rooms []model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(rooms))
	s.rooms = s.rooms[:0]
	for _, r := range rooms {
		if _, dup := seen[r.UUID]; dup {
			continue
		}
		seen[r.UUID] = struct{}{}
		s.rooms = append(s.rooms, r.Clone())
	}
}

func (s *Rooms) Remove(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(uuid)
}

func (s *Rooms) removeLocked(uuid string) bool {
	i := s.indexOf(uuid)
	if i < 0 {
		return false
	}
	s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
	delete(s.newMessages, uuid)
	if s.active != nil && s.active.UUID == uuid {
		s.active = nil
	}
	return true
}

// Update applies a backend change to a held room. A room now assigned to
// someone other than the agent (or the agent a supervisor is viewing) leaves
// the list; if it was open, the UI is sent home.
func (s *Rooms) Update(room model.Room, opts UpdateOptions) {
	var navigate func()

	s.mu.Lock()
	i := s.indexOf(room.UUID)
	if i >= 0 {
		owner := room.User.GetEmail()
		if owner != "" && owner != opts.UserEmail && owner != opts.ViewedAgentEmail {
			wasActive := s.active != nil && s.active.UUID == room.UUID
			s.removeLocked(room.UUID)
			if wasActive {
				navigate = opts.Navigate
			}
		} else {
			s.rooms[i] = room.Clone()
			if s.active != nil && s.active.UUID == room.UUID {
				active := room.Clone()
				s.active = &active
			}
		}
	}
	s.mu.Unlock()

	if navigate != nil {
		navigate()
	}
}

// BringFront moves a room to the head of the list.
func (s *Rooms) BringFront(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(uuid)
	if i <= 0 {
		return
	}
	room := s.rooms[i]
	copy(s.rooms[1:i+1], s.rooms[:i])
	s.rooms[0] = room
}

func (s *Rooms) UpdateLastMessage(uuid string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(uuid)
	if i < 0 {
		return
	}
	s.rooms[i].LastMessage = msg.Summary()
	if s.active != nil && s.active.UUID == uuid {
		s.active.LastMessage = msg.Summary()
	}
}

// SetLastMessageUUID stamps the uuid of the latest message without replacing
// the summary, so a later update for that uuid is recognised.
func (s *Rooms) SetLastMessageUUID(uuid, messageUUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(uuid)
	if i < 0 {
		return
	}
	if s.rooms[i].LastMessage == nil {
		s.rooms[i].LastMessage = &model.Message{Room: uuid}
	}
	s.rooms[i].LastMessage.UUID = messageUUID
}

// AddNewMessages records an unread message for a held room. Unknown rooms
// are ignored.
func (s *Rooms) AddNewMessages(uuid string, msg model.NewMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(uuid) < 0 {
		return
	}
	s.newMessages[uuid] = append(s.newMessages[uuid], msg)
}

func (s *Rooms) ResetNewMessages(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.newMessages, uuid)
}

func (s *Rooms) NewMessages(uuid string) []model.NewMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.NewMessage(nil), s.newMessages[uuid]...)
}

func (s *Rooms) Active() (model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return model.Room{}, false
	}
	return s.active.Clone(), true
}

// SetActive marks room as the one open in the UI; nil clears it.
func (s *Rooms) SetActive(room *model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room == nil {
		s.active = nil
		return
	}
	active := room.Clone()
	s.active = &active
}
