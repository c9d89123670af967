package memory

import (
	"context"
	"sync"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

type RealtimeEvent struct {
	Channel string
	Event   string
	Payload any
}

// Realtime records published events instead of delivering them.
type Realtime struct {
	mu     sync.Mutex
	events []RealtimeEvent

	// Fail makes every Publish return this error.
	Fail error
}

func (r *Realtime) Publish(_ context.Context, channel, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.events = append(r.events, RealtimeEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (r *Realtime) Events() []RealtimeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RealtimeEvent(nil), r.events...)
}

// Email records sent messages. The first FailFirst sends return Fail.
type Email struct {
	mu        sync.Mutex
	sent      []ports.EmailMessage
	attempts  int
	Fail      error
	FailFirst int
}

func (e *Email) Send(_ context.Context, msg ports.EmailMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attempts++
	if e.Fail != nil && (e.FailFirst <= 0 || e.attempts <= e.FailFirst) {
		return e.Fail
	}
	e.sent = append(e.sent, msg)
	return nil
}

func (e *Email) Sent() []ports.EmailMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ports.EmailMessage(nil), e.sent...)
}

func (e *Email) Attempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts
}
