package store

import (
	"sync"

	"chat-app-agent/internal/model"
)

// Messages holds the message list of whatever room or discussion is open.
// Messages addressed to anything else are ignored.
type Messages struct {
	mu       sync.RWMutex
	owner    string
	messages []model.Message
}

func NewMessages() *Messages {
	return &Messages{}
}

func (s *Messages) indexOf(uuid string) int {
	for i := range s.messages {
		if s.messages[i].UUID == uuid {
			return i
		}
	}
	return -1
}

func (s *Messages) belongs(msg model.Message) bool {
	return s.owner != "" && (msg.Room == s.owner || msg.Discussion == s.owner)
}

// Open points the store at a room or discussion and loads its history.
func (s *Messages) Open(owner string, messages []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	s.messages = make([]model.Message, 0, len(messages))
	for _, m := range messages {
		s.messages = append(s.messages, m.Clone())
	}
}

func (s *Messages) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

func (s *Messages) List() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m.Clone())
	}
	return out
}

// Add appends msg unless its uuid is already present.
func (s *Messages) Add(msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.belongs(msg) {
		return false
	}
	if msg.UUID != "" && s.indexOf(msg.UUID) >= 0 {
		return false
	}
	s.messages = append(s.messages, msg.Clone())
	return true
}

// Upsert replaces the held copy of msg, keeping media transcriptions the
// update does not carry, or appends it when absent.
func (s *Messages) Upsert(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.belongs(msg) {
		return
	}
	i := s.indexOf(msg.UUID)
	if i < 0 {
		s.messages = append(s.messages, msg.Clone())
		return
	}
	merged := msg.Clone()
	if len(merged.Media) == 0 {
		merged.Media = append([]model.Media(nil), s.messages[i].Media...)
	} else {
		for j := range merged.Media {
			if merged.Media[j].Transcription != "" {
				continue
			}
			for _, old := range s.messages[i].Media {
				if old.URL == merged.Media[j].URL {
					merged.Media[j].Transcription = old.Transcription
				}
			}
		}
	}
	s.messages[i] = merged
}

// Reset closes the store.
func (s *Messages) Reset() {
	s.mu.Lock()
	s.owner = ""
	s.messages = nil
	s.mu.Unlock()
}
