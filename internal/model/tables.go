package model

import "fmt"

const (
	PreferencesTable = "AgentPreferences"
)

// PreferenceItem is one persisted agent preference row.
type PreferenceItem struct {
	PK        string `dynamodbav:"pk"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

func PreferencePK(agentEmail, key string) string {
	return fmt.Sprintf("%s#%s", agentEmail, key)
}
