package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// EffectsChannel is the Redis channel the UI shell listens on for cues.
func EffectsChannel(agentEmail string) string {
	return fmt.Sprintf("agent:%s:effects", agentEmail)
}

type effect struct {
	Type         string    `json:"type"`
	Sound        SoundName `json:"sound,omitempty"`
	Notification
}

// Publisher hands sound and desktop cues to the UI shell over Redis pub/sub.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, agentEmail string) *Publisher {
	return &Publisher{
		client:  client,
		channel: EffectsChannel(agentEmail),
	}
}

func (p *Publisher) publish(ctx context.Context, payload effect) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify publish: marshal payload: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		return fmt.Errorf("notify publish: redis publish: %w", err)
	}
	return nil
}

func (p *Publisher) Play(ctx context.Context, name SoundName) error {
	return p.publish(ctx, effect{Type: "sound", Sound: name})
}

func (p *Publisher) Show(ctx context.Context, n Notification) error {
	if n.Title == "" && n.Body == "" {
		return fmt.Errorf("notify publish: empty notification")
	}
	return p.publish(ctx, effect{Type: "desktop", Notification: n})
}

// LogPlayer and LogDesktop stand in when no UI shell channel is configured.
type LogPlayer struct {
	Logger zerolog.Logger
}

func (l LogPlayer) Play(_ context.Context, name SoundName) error {
	l.Logger.Info().Str("sound", string(name)).Msg("sound cue")
	return nil
}

type LogDesktop struct {
	Logger zerolog.Logger
}

func (l LogDesktop) Show(_ context.Context, n Notification) error {
	l.Logger.Info().Str("title", n.Title).Str("body", n.Body).Str("icon", n.Icon).Msg("desktop notification")
	return nil
}
