package sse

import (
	"sync"
)

const (
	EventConnected             = "connected"
	EventRegularizationUpdated = "regularization.updated"
	EventAttendanceUpdated     = "attendance.updated"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// UserTopic addresses every open stream of one user.
func UserTopic(userID string) string {
	return "user:" + userID
}

// RoleTopic addresses every open stream of users holding a role.
func RoleTopic(role string) string {
	return "role:" + role
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers one channel on all given topics and returns it with its cleanup function
func (h *Hub) Subscribe(topics ...string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	for _, topic := range topics {
		if h.subscribers[topic] == nil {
			h.subscribers[topic] = make(map[chan Event]struct{})
		}
		h.subscribers[topic][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, topic := range topics {
				delete(h.subscribers[topic], ch)
				if len(h.subscribers[topic]) == 0 {
					delete(h.subscribers, topic)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of the given topics. A channel
// subscribed to several of them receives the event once.
func (h *Hub) Publish(event Event, topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := make(map[chan Event]struct{})
	for _, topic := range topics {
		for ch := range h.subscribers[topic] {
			if _, dup := sent[ch]; dup {
				continue
			}
			sent[ch] = struct{}{}

			e := event
			e.Topic = topic
			select {
			case ch <- e:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[topic])
}

// TotalSubscribers returns the number of distinct open channels
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[chan Event]struct{})
	for _, subs := range h.subscribers {
		for ch := range subs {
			seen[ch] = struct{}{}
		}
	}
	return len(seen)
}
