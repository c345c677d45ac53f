package realtime

import (
	"sync"

	"github.com/Kaptaan1992/honeybees-daycare/store"
)

type EventType string

const (
	// EventDailyLogChanged carries the full updated record so an open view
	// of that (child, date) can refresh without re-querying.
	EventDailyLogChanged EventType = "daily-log-changed"
	EventSettingsChanged EventType = "settings-changed"
	// EventDataChanged tells dependent views to re-run their normal read
	// path for the named table.
	EventDataChanged EventType = "data-changed"
)

type Event struct {
	Type     EventType
	Table    string
	DailyLog *store.DailyLog
}

type SubscribeCallbackFunc func(event Event)

// Bus fans in-process change notifications out to registered subscribers.
type Bus struct {
	mutex       sync.RWMutex
	subscribers []SubscribeCallbackFunc
}

func (b *Bus) Subscribe(callback SubscribeCallbackFunc) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.subscribers = append(b.subscribers, callback)
}

func (b *Bus) Publish(event Event) {
	b.mutex.RLock()
	subscribers := make([]SubscribeCallbackFunc, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mutex.RUnlock()

	for _, callback := range subscribers {
		callback(event)
	}
}
