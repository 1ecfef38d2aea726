package realtime

import (
	"log/slog"
	"sync"
)

// Table names used as broker topics.
const (
	TableProjects   = "portfolio_projects"
	TableSiteConfig = "site_config"
)

// Event kinds.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event signals that a watched table changed. Projects events carry no row
// data; site_config events carry the new value.
type Event struct {
	Table string `json:"table"`
	Type  string `json:"event"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// Publisher is implemented by anything that fans out change events.
type Publisher interface {
	Publish(Event)
}

const subscriptionBuffer = 8

// Broker is an in-process pub/sub keyed by table name.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*Subscription]struct{})}
}

type Subscription struct {
	table  string
	ch     chan Event
	broker *Broker
	once   sync.Once
}

// C delivers events until the subscription is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close removes the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		if set, ok := b.subs[s.table]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.table)
			}
		}
		close(s.ch)
		b.mu.Unlock()
	})
}

func (b *Broker) Subscribe(table string) *Subscription {
	sub := &Subscription{
		table:  table,
		ch:     make(chan Event, subscriptionBuffer),
		broker: b,
	}
	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[*Subscription]struct{})
	}
	b.subs[table][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish never blocks: a subscriber with a full buffer misses the event.
// Every event means "re-read", so the next one brings it back in sync.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[ev.Table] {
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("Dropping change notification for slow subscriber", "table", ev.Table, "event", ev.Type)
		}
	}
}

// Subscribers reports how many subscriptions are open for table.
func (b *Broker) Subscribers(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}
