// Package broadcast fans mutation and notification events out to subscribers.
// Publishing never blocks the caller: a subscriber whose buffer is full
// misses the event, and a topic without subscribers is not an error.
package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event types carried on the bus.
const (
	TaskCreated       = "task.created"
	TaskUpdated       = "task.updated"
	TaskMoved         = "task.moved"
	TaskDeleted       = "task.deleted"
	DependencyAdded   = "dependency.added"
	DependencyRemoved = "dependency.removed"
	BoardUpdated      = "board.updated"
	WorkspaceUpdated  = "workspace.updated"
	NotificationNew   = "notification"
)

// SubscriberBuffer is the channel capacity of each subscription.
const SubscriberBuffer = 16

// TaskTopic is the topic for mutations inside a workspace.
func TaskTopic(workspaceID uint) string {
	return fmt.Sprintf("workspace:%d:tasks", workspaceID)
}

// NotificationTopic is the per-user notification topic.
func NotificationTopic(userID uint) string {
	return fmt.Sprintf("user:%d:notifications", userID)
}

// Event is the envelope delivered to subscribers. Origin names the hub that
// first published it.
type Event struct {
	ID      string          `json:"id"`
	Origin  string          `json:"origin"`
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Time    time.Time       `json:"time"`
}

// Publisher is what mutation code depends on.
type Publisher interface {
	PublishTaskUpdate(workspaceID uint, eventType string, payload any)
	PublishNotification(userID uint, payload any)
}

// Subscription receives events for one topic until closed.
type Subscription struct {
	C <-chan Event

	ch    chan Event
	hub   *Hub
	topic string
	once  sync.Once
}

// Close removes the subscription from the hub. It is safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub is the in-process fan-out point.
type Hub struct {
	origin string
	log    logrus.FieldLogger

	mu      sync.RWMutex
	subs    map[string]map[*Subscription]struct{}
	forward func(Event)
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		origin: uuid.NewString(),
		log:    log,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Origin identifies this hub in relayed events.
func (h *Hub) Origin() string { return h.origin }

// Subscribe registers a buffered subscription on topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Event, SubscriberBuffer)
	s := &Subscription{C: ch, ch: ch, hub: h, topic: topic}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[s.topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.subs, s.topic)
		}
	}
}

// Subscribers reports how many subscriptions exist on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Publish wraps payload in an Event, delivers it locally and hands it to the
// forwarder, if one is set. Only a payload that cannot be encoded fails.
func (h *Hub) Publish(topic, eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("broadcast: encode %s payload: %w", eventType, err)
	}
	ev := Event{
		ID:      uuid.NewString(),
		Origin:  h.origin,
		Topic:   topic,
		Type:    eventType,
		Payload: data,
		Time:    time.Now().UTC(),
	}
	h.Deliver(ev)

	h.mu.RLock()
	fwd := h.forward
	h.mu.RUnlock()
	if fwd != nil {
		fwd(ev)
	}
	return &ev, nil
}

// Deliver hands ev to every local subscriber of ev.Topic without blocking.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.Topic] {
		select {
		case s.ch <- ev:
		default:
			h.log.WithField("topic", ev.Topic).WithField("event", ev.Type).
				Warn("broadcast: subscriber buffer full, event dropped")
		}
	}
}

// SetForwarder installs fn to receive every locally published event.
func (h *Hub) SetForwarder(fn func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forward = fn
}

// PublishTaskUpdate publishes on the workspace task topic. Failures are logged.
func (h *Hub) PublishTaskUpdate(workspaceID uint, eventType string, payload any) {
	if _, err := h.Publish(TaskTopic(workspaceID), eventType, payload); err != nil {
		h.log.WithError(err).WithField("workspace_id", workspaceID).Warn("broadcast: task update not published")
	}
}

// PublishNotification publishes on the user's notification topic. Failures
// are logged.
func (h *Hub) PublishNotification(userID uint, payload any) {
	if _, err := h.Publish(NotificationTopic(userID), NotificationNew, payload); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("broadcast: notification not published")
	}
}
