package notification

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/h44z/wg-portal-routeros/internal/app"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type EventBus interface {
	// Subscribe subscribes to a topic
	Subscribe(topic string, fn interface{}) error
}

// Feed keeps the most recent notifications in memory, newest last.
type Feed struct {
	capacity int

	mux     sync.RWMutex
	entries []domain.Notification
}

func NewFeed(cfg *config.Config, bus EventBus) (*Feed, error) {
	capacity := cfg.Advanced.NotificationBuffer
	if capacity <= 0 {
		capacity = 50
	}

	f := &Feed{
		capacity: capacity,
		entries:  make([]domain.Notification, 0, capacity),
	}

	if err := bus.Subscribe(app.TopicNotification, f.handleNotificationEvent); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", app.TopicNotification, err)
	}

	return f, nil
}

func (f *Feed) handleNotificationEvent(n domain.Notification) {
	slog.Debug("handling notification event", "id", n.Id, "level", n.Level, "category", n.Category)

	f.Add(n)
}

// Add appends a notification, the oldest entry is dropped once the feed is full.
func (f *Feed) Add(n domain.Notification) {
	f.mux.Lock()
	defer f.mux.Unlock()

	if len(f.entries) >= f.capacity {
		copy(f.entries, f.entries[1:])
		f.entries = f.entries[:len(f.entries)-1]
	}
	f.entries = append(f.entries, n)
}

// List returns a copy of the buffered notifications, newest first.
func (f *Feed) List() []domain.Notification {
	f.mux.RLock()
	defer f.mux.RUnlock()

	result := make([]domain.Notification, len(f.entries))
	for i, n := range f.entries {
		result[len(f.entries)-1-i] = n
	}
	return result
}
