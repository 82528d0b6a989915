package model

import (
	"encoding/json"
	"strings"
)

type Media struct {
	URL           string `json:"url"`
	ContentType   string `json:"content_type,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

type Message struct {
	UUID       string   `json:"uuid"`
	Room       string   `json:"room,omitempty"`
	Discussion string   `json:"discussion,omitempty"`
	User       *Agent   `json:"user,omitempty"`
	Contact    *Contact `json:"contact,omitempty"`
	Text       string   `json:"text"`
	Media      []Media  `json:"media,omitempty"`
	Status     string   `json:"status,omitempty"`
	CreatedOn  string   `json:"created_on"`
}

func (m Message) SentBy(email string) bool {
	return m.User != nil && email != "" && m.User.Email == email
}

// IsSystem reports a message with neither an agent nor a contact sender.
func (m Message) IsSystem() bool {
	return m.User == nil && m.Contact == nil
}

// IsEmptyPlaceholder reports a message created ahead of its media upload.
func (m Message) IsEmptyPlaceholder() bool {
	return strings.TrimSpace(m.Text) == "" && len(m.Media) == 0
}

// HasStructuredPayload reports text that is itself a JSON object, which the
// backend uses for control messages such as transfers.
func (m Message) HasStructuredPayload() bool {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "{") {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(text), &obj) == nil
}

func (m Message) FirstMediaURL() string {
	if len(m.Media) == 0 {
		return ""
	}
	return m.Media[0].URL
}

func (m Message) Clone() Message {
	out := m
	if m.User != nil {
		u := *m.User
		out.User = &u
	}
	if m.Contact != nil {
		c := *m.Contact
		out.Contact = &c
	}
	if m.Media != nil {
		out.Media = append([]Media(nil), m.Media...)
	}
	return out
}

// Summary builds the last_message view kept on a room.
func (m Message) Summary() *Message {
	s := m.Clone()
	return &s
}
