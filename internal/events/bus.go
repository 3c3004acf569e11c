// Package events provides a small publish/subscribe bus used to decouple
// the API client from the session service. The client announces token
// rotations without knowing who listens.
package events

import "sync"

// Event is the interface implemented by all bus events.
type Event interface {
	isEvent()
}

// TokensRefreshed is published after a successful token rotation.
type TokensRefreshed struct {
	AccessToken  string
	RefreshToken string
}

// RefreshFailed is published when a token rotation fails terminally.
type RefreshFailed struct {
	Err error
}

// ConfigUpdated is published when the persisted project configuration
// changes, whether from inside this process or from another one.
type ConfigUpdated struct{}

func (TokensRefreshed) isEvent() {}
func (RefreshFailed) isEvent()   {}
func (ConfigUpdated) isEvent()   {}

// Bus fan-outs events to subscriber channels. Sends never block; a
// subscriber that falls behind misses events rather than stalling the
// publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 16)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish delivers an event to all subscribers without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Close closes every subscriber channel. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
