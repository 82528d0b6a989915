package listener

// Action is one of the event names the backend pushes over the websocket.
type Action uint8

const (
	RoomsCreate Action = iota
	RoomsUpdate
	RoomsClose
	MsgCreate
	MsgUpdate
	DiscussionsCreate
	DiscussionsUpdate
	DiscussionsClose
	DiscussionMsgCreate
	StatusUpdate
	StatusClose

	actionCount
)

var actionNames = [actionCount]string{
	RoomsCreate:         "rooms.create",
	RoomsUpdate:         "rooms.update",
	RoomsClose:          "rooms.close",
	MsgCreate:           "msg.create",
	MsgUpdate:           "msg.update",
	DiscussionsCreate:   "discussions.create",
	DiscussionsUpdate:   "discussions.update",
	DiscussionsClose:    "discussions.close",
	DiscussionMsgCreate: "discussion_msg.create",
	StatusUpdate:        "status.update",
	StatusClose:         "status.close",
}

func (a Action) String() string {
	if a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction maps a wire name back to its Action.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Actions lists every known action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}
