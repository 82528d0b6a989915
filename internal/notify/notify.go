// Package notify plays sound cues and raises desktop notifications for
// incoming chat activity.
package notify

import (
	"context"
	"errors"
	"time"

	"chat-app-agent/internal/queue"
	"chat-app-agent/internal/storage"

	"github.com/rs/zerolog"
)

type SoundName string

const (
	SoundSelect      SoundName = "select-sound"
	SoundAchievement SoundName = "achievement-confirmation"
	SoundPing        SoundName = "ping-bing"
)

// playTimeout bounds one sound or desktop delivery.
const playTimeout = 5 * time.Second

var ErrQueueFull = errors.New("notify: queue full")

type Player interface {
	Play(ctx context.Context, name SoundName) error
}

type Notification struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Icon     string `json:"icon,omitempty"`
	RoomUUID string `json:"roomUuid,omitempty"`
}

type Desktop interface {
	Show(ctx context.Context, n Notification) error
}

// Dispatcher gates playback on the persisted sound preference. The
// preference is read on every call so a change applies to the next event.
type Dispatcher struct {
	prefs  *storage.Preferences
	player Player
	queue  *queue.RequestQueueManager
	logger zerolog.Logger
}

// NewDispatcher builds a dispatcher. With a nil queue, playback runs inline.
func NewDispatcher(prefs *storage.Preferences, player Player, q *queue.RequestQueueManager, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		prefs:  prefs,
		player: player,
		queue:  q,
		logger: logger,
	}
}

// Enabled reports false only when the agent explicitly switched sound off.
func (d *Dispatcher) Enabled(ctx context.Context) bool {
	value, err := d.prefs.Lookup(ctx, storage.KeySound, storage.ScopeLocal)
	if err != nil {
		d.logger.Debug().Err(err).Msg("sound preference unavailable")
		return true
	}
	return value != storage.SoundOff
}

func (d *Dispatcher) Notify(ctx context.Context, name SoundName) {
	if !d.Enabled(ctx) {
		return
	}

	play := func() error {
		pctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := d.player.Play(pctx, name); err != nil {
			d.logger.Debug().Err(err).Str("sound", string(name)).Msg("sound playback failed")
		}
		return nil
	}

	if d.queue == nil {
		d.runInline(play)
		return
	}
	if !d.queue.TryEnqueue(queue.Job{Name: "sound:" + string(name), Fn: play}) {
		d.logger.Debug().Str("sound", string(name)).Msg("sound dropped, queue full")
	}
}

func (d *Dispatcher) runInline(fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug().Interface("panic", r).Msg("recovered from panic in sound playback")
		}
	}()
	_ = fn()
}

// QueuedDesktop hands notifications to the work queue so callers never wait
// on delivery. Delivery errors are logged by the worker.
type QueuedDesktop struct {
	desktop Desktop
	queue   *queue.RequestQueueManager
	logger  zerolog.Logger
}

func NewQueuedDesktop(desktop Desktop, q *queue.RequestQueueManager, logger zerolog.Logger) *QueuedDesktop {
	return &QueuedDesktop{desktop: desktop, queue: q, logger: logger}
}

// Show returns ErrQueueFull when the notification could not be queued.
func (d *QueuedDesktop) Show(_ context.Context, n Notification) error {
	job := queue.Job{Name: "desktop", Fn: func() error {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := d.desktop.Show(ctx, n); err != nil {
			d.logger.Warn().Err(err).Str("room", n.RoomUUID).Msg("desktop notification failed")
		}
		return nil
	}}
	if !d.queue.TryEnqueue(job) {
		return ErrQueueFull
	}
	return nil
}
