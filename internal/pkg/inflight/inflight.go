// Package inflight rejects a second identical action while the first is still
// running, instead of letting it reach the upstream API twice.
package inflight

import (
	"errors"
	"sync"
)

var ErrInFlight = errors.New("the same action is already in progress")

type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func New() *Guard {
	return &Guard{running: make(map[string]struct{})}
}

// Acquire marks key as running. The returned release must be called once the
// action finishes. ok is false if key is already running.
func (g *Guard) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.running[key]; busy {
		return func() {}, false
	}
	g.running[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, key)
			g.mu.Unlock()
		})
	}, true
}

// Do runs fn under key, or returns ErrInFlight without running it.
func (g *Guard) Do(key string, fn func() error) error {
	release, ok := g.Acquire(key)
	if !ok {
		return ErrInFlight
	}
	defer release()
	return fn()
}

func Key(sessionID, action string) string {
	return sessionID + ":" + action
}
