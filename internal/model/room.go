package model

const (
	TransferActionTransfer = "transfer"
	TransferActionForward  = "forward"
)

type Agent struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (a *Agent) GetEmail() string {
	if a == nil {
		return ""
	}
	return a.Email
}

type Contact struct {
	UUID string `json:"uuid,omitempty"`
	Name string `json:"name"`
}

type Queue struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
}

type TransferHistory struct {
	Action string            `json:"action"`
	From   map[string]string `json:"from,omitempty"`
	To     map[string]string `json:"to,omitempty"`
}

// Room is an active chat session between a contact and an agent.
type Room struct {
	UUID            string           `json:"uuid"`
	User            *Agent           `json:"user,omitempty"`
	Contact         Contact          `json:"contact"`
	Queue           *Queue           `json:"queue,omitempty"`
	LastMessage     *Message         `json:"last_message,omitempty"`
	UnreadMsgs      int              `json:"unread_msgs"`
	TransferHistory *TransferHistory `json:"transfer_history,omitempty"`
	IsActive        bool             `json:"is_active"`
}

func (r Room) TransferAction() string {
	if r.TransferHistory == nil {
		return ""
	}
	return r.TransferHistory.Action
}

// Clone returns a copy that shares no pointers with r.
func (r Room) Clone() Room {
	out := r
	if r.User != nil {
		u := *r.User
		out.User = &u
	}
	if r.Queue != nil {
		q := *r.Queue
		out.Queue = &q
	}
	if r.LastMessage != nil {
		m := r.LastMessage.Clone()
		out.LastMessage = &m
	}
	if r.TransferHistory != nil {
		th := *r.TransferHistory
		out.TransferHistory = &th
	}
	return out
}

// NewMessage is the lightweight entry kept for unread tracking.
type NewMessage struct {
	CreatedOn string `json:"created_on"`
	UUID      string `json:"uuid"`
	Text      string `json:"text"`
}

type Project struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name,omitempty"`
	RoomRoutingType string `json:"room_routing_type"`
}

const RoutingQueuePriority = "QUEUE_PRIORITY"

// AutomaticRouting reports whether rooms are assigned to agents by the backend.
func (p Project) AutomaticRouting() bool {
	return p.RoomRoutingType == RoutingQueuePriority
}
