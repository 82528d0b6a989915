package model

// Discussion is an agent-only side conversation about a room.
type Discussion struct {
	UUID        string   `json:"uuid"`
	CreatedBy   string   `json:"created_by"`
	AddedAgents []string `json:"added_agents"`
	Room        string   `json:"room"`
	Contact     string   `json:"contact"`
	Subject     string   `json:"subject,omitempty"`
	IsActive    bool     `json:"is_active"`
}

func (d Discussion) HasAgent(email string) bool {
	for _, agent := range d.AddedAgents {
		if agent == email {
			return true
		}
	}
	return false
}

func (d Discussion) Clone() Discussion {
	out := d
	if d.AddedAgents != nil {
		out.AddedAgents = append([]string(nil), d.AddedAgents...)
	}
	return out
}
