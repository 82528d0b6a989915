package store

import (
	"sync"

	"chat-app-agent/internal/model"
)

type Discussions struct {
	mu             sync.RWMutex
	discussions    []model.Discussion
	active         *model.Discussion
	newDiscussions int
	newMessages    map[string]int
}

func NewDiscussions() *Discussions {
	return &Discussions{newMessages: make(map[string]int)}
}

func (s *Discussions) indexOf(uuid string) int {
	for i := range s.discussions {
		if s.discussions[i].UUID == uuid {
			return i
		}
	}
	return -1
}

func (s *Discussions) List() []model.Discussion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Discussion, 0, len(s.discussions))
	for _, d := range s.discussions {
		out = append(out, d.Clone())
	}
	return out
}

func (s *Discussions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.discussions)
}

func (s *Discussions) Get(uuid string) (model.Discussion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(uuid)
	if i < 0 {
		return model.Discussion{}, false
	}
	return s.discussions[i].Clone(), true
}

// Add inserts the discussion at the head unless its uuid is already held.
func (s *Discussions) Add(d model.Discussion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(d.UUID) >= 0 {
		return false
	}
	s.discussions = append([]model.Discussion{d.Clone()}, s.discussions...)
	return true
}

// Update replaces a held discussion and refreshes the active copy. It
// reports false when the uuid is unknown.
func (s *Discussions) Update(d model.Discussion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(d.UUID)
	if i < 0 {
		return false
	}
	s.discussions[i] = d.Clone()
	if s.active != nil && s.active.UUID == d.UUID {
		active := d.Clone()
		s.active = &active
	}
	return true
}

func (s *Discussions) Replace(discussions []model.Discussion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(discussions))
	s.discussions = s.discussions[:0]
	for _, d := range discussions {
		if _, dup := seen[d.UUID]; dup {
			continue
		}
		seen[d.UUID] = struct{}{}
		s.discussions = append(s.discussions, d.Clone())
	}
}

func (s *Discussions) Remove(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(uuid)
	if i < 0 {
		return
	}
	s.discussions = append(s.discussions[:i], s.discussions[i+1:]...)
	delete(s.newMessages, uuid)
	if s.active != nil && s.active.UUID == uuid {
		s.active = nil
	}
}

func (s *Discussions) Active() (model.Discussion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return model.Discussion{}, false
	}
	return s.active.Clone(), true
}

func (s *Discussions) SetActive(d *model.Discussion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.active = nil
		return
	}
	active := d.Clone()
	s.active = &active
	delete(s.newMessages, d.UUID)
}

func (s *Discussions) IncrementNewDiscussions() {
	s.mu.Lock()
	s.newDiscussions++
	s.mu.Unlock()
}

func (s *Discussions) NewDiscussions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newDiscussions
}

func (s *Discussions) ResetNewDiscussions() {
	s.mu.Lock()
	s.newDiscussions = 0
	s.mu.Unlock()
}

func (s *Discussions) AddNewMessages(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(uuid) < 0 {
		return
	}
	s.newMessages[uuid]++
}

func (s *Discussions) NewMessages(uuid string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newMessages[uuid]
}
