package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Live topics
const (
	TopicOrders        = "orders"
	TopicCustomers     = "customers"
	TopicMaterials     = "materials"
	TopicSuppliers     = "suppliers"
	TopicNotifications = "notifications"
	TopicDesigns       = "designs"
	TopicReports       = "reports"
)

// DefaultSubscriptionBuffer is how many snapshots a subscriber may fall behind
const DefaultSubscriptionBuffer = 8

// OrderTopic is the topic for a single order and its jerseys
func OrderTopic(orderID string) string {
	return "orders/" + orderID
}

// ErrHubClosed is returned when subscribing to a hub that has been shut down
var ErrHubClosed = errors.New("live hub is closed")

// Snapshot is a full read of one topic at a point in time
type Snapshot struct {
	Topic   string      `json:"topic"`
	Version uint64      `json:"version"`
	Data    interface{} `json:"data"`
	At      time.Time   `json:"at"`
}

// Loader reads the current full state of a topic
type Loader func(ctx context.Context) (interface{}, error)

// Publisher is notified after writes so subscribers can be refreshed
type Publisher interface {
	Publish(ctx context.Context, topics ...string)
}

type topic struct {
	loader    Loader
	subs      map[*Subscription]struct{}
	next      uint64
	delivered uint64
}

// Hub fans out fresh snapshots to live subscribers
type Hub struct {
	mu         sync.Mutex
	topics     map[string]*topic
	bufferSize int
	closed     bool
}

// NewHub creates a hub whose subscriptions queue up to bufferSize snapshots
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		topics:     make(map[string]*topic),
		bufferSize: bufferSize,
	}
}

// Subscription delivers an ordered sequence of snapshots until cancelled
type Subscription struct {
	hub   *Hub
	topic string
	ch    chan Snapshot
	once  sync.Once
}

// C returns the snapshot channel; it is closed on Cancel or Hub.Close
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Topic returns the subscribed topic
func (s *Subscription) Topic() string {
	return s.topic
}

// Cancel stops delivery and releases the subscription
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if t, ok := s.hub.topics[s.topic]; ok {
			delete(t.subs, s)
			if len(t.subs) == 0 {
				delete(s.hub.topics, s.topic)
			}
		}
		close(s.ch)
	})
}

// Subscribe registers for a topic and queues the initial snapshot. The
// subscription is registered before the first load so a write that lands
// during that load is still delivered.
func (h *Hub) Subscribe(ctx context.Context, name string, load Loader) (*Subscription, error) {
	sub := &Subscription{
		hub:   h,
		topic: name,
		ch:    make(chan Snapshot, h.bufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	t, ok := h.topics[name]
	if !ok {
		t = &topic{loader: load, subs: make(map[*Subscription]struct{})}
		h.topics[name] = t
	}
	t.subs[sub] = struct{}{}
	h.mu.Unlock()

	if err := h.refresh(ctx, name, t, load); err != nil {
		sub.Cancel()
		if errors.Is(err, ErrHubClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load initial snapshot for %s: %w", name, err)
	}
	return sub, nil
}

// Publish reloads each topic that has subscribers and delivers the result.
// Topics without subscribers cost nothing.
func (h *Hub) Publish(ctx context.Context, topics ...string) {
	for _, name := range topics {
		h.mu.Lock()
		t, ok := h.topics[name]
		if !ok || h.closed {
			h.mu.Unlock()
			continue
		}
		load := t.loader
		h.mu.Unlock()

		if err := h.refresh(ctx, name, t, load); err != nil && !errors.Is(err, ErrHubClosed) {
			log.Printf("[live] failed to reload %s: %v", name, err)
		}
	}
}

// refresh claims the next version of t, loads it and offers it to every
// subscriber unless a newer version was delivered first.
func (h *Hub) refresh(ctx context.Context, name string, t *topic, load Loader) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	t.next++
	version := t.next
	h.mu.Unlock()

	data, err := load(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	if t.delivered < version {
		t.delivered = version
		snap := Snapshot{Topic: name, Version: version, Data: data, At: time.Now().UTC()}
		for sub := range t.subs {
			sub.offer(snap)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions for a topic
func (h *Hub) Subscribers(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.topics[name]; ok {
		return len(t.subs)
	}
	return 0
}

// Close cancels every subscription; later subscribes fail with ErrHubClosed
func (h *Hub) Close() {
	h.mu.Lock()
	var subs []*Subscription
	for _, t := range h.topics {
		for sub := range t.subs {
			subs = append(subs, sub)
		}
	}
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// offer queues snap, dropping the oldest queued snapshot when the buffer is full.
// Callers hold h.mu.
func (s *Subscription) offer(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
