package websocket

import (
	"encoding/json"
	"errors"
)

var ErrNotOpen = errors.New("websocket: connection is not open")

type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	}
	return "closed"
}

// Frame is the inbound envelope. Content normally carries a JSON document
// encoded as a string.
type Frame struct {
	Action  string          `json:"action"`
	Content json.RawMessage `json:"content"`
}

// Listener receives the decoded content of a frame.
type Listener func(content json.RawMessage)

type pingMessage struct {
	Type    string   `json:"type"`
	Message struct{} `json:"message"`
}
