// Package storage persists small agent preferences such as the sound switch
// and the last chosen status.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("storage: key not found")

const (
	KeySound = "sound"

	SoundOn  = "yes"
	SoundOff = "no"
)

// AgentStatusKey is the per-project key holding the agent's chosen status.
func AgentStatusKey(projectUUID string) string {
	return fmt.Sprintf("agent-status-%s", projectUUID)
}

type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type Scope int

const (
	ScopeLocal Scope = iota
	ScopeSession
)

// Preferences splits keys between a persistent store that outlives the
// process and a session store that lives as long as the login.
type Preferences struct {
	Local   KeyValue
	Session KeyValue
}

func NewPreferences(local, session KeyValue) *Preferences {
	if local == nil {
		local = NewMemory()
	}
	if session == nil {
		session = NewMemory()
	}
	return &Preferences{Local: local, Session: session}
}

func (p *Preferences) store(scope Scope) KeyValue {
	if scope == ScopeSession {
		return p.Session
	}
	return p.Local
}

func (p *Preferences) Get(ctx context.Context, key string, scope Scope) (string, error) {
	return p.store(scope).Get(ctx, key)
}

// Lookup returns "" for a missing key and only fails on backend errors.
func (p *Preferences) Lookup(ctx context.Context, key string, scope Scope) (string, error) {
	value, err := p.Get(ctx, key, scope)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return value, err
}

func (p *Preferences) Set(ctx context.Context, key, value string, scope Scope) error {
	return p.store(scope).Set(ctx, key, value)
}

func (p *Preferences) Delete(ctx context.Context, key string, scope Scope) error {
	return p.store(scope).Delete(ctx, key)
}
