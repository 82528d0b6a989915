package store

import (
	"sync"

	"chat-app-agent/internal/model"
)

// Config holds project settings and the agent's presence status.
type Config struct {
	mu           sync.RWMutex
	status       string
	project      model.Project
	disconnected map[string]string
}

func NewConfig() *Config {
	return &Config{disconnected: make(map[string]string)}
}

func (c *Config) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Config) SetStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *Config) Project() model.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project
}

func (c *Config) SetProject(p model.Project) {
	c.mu.Lock()
	c.project = p
	c.mu.Unlock()
}

func (c *Config) AutomaticRouting() bool {
	return c.Project().AutomaticRouting()
}

// SetDisconnectedAgent records a status the system forced on an agent, for
// example when a supervisor or an idle timeout disconnected them.
func (c *Config) SetDisconnectedAgent(agentEmail, status string) {
	c.mu.Lock()
	c.disconnected[agentEmail] = status
	c.mu.Unlock()
}

func (c *Config) DisconnectedAgents() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.disconnected))
	for k, v := range c.disconnected {
		out[k] = v
	}
	return out
}
