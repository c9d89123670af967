package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

// Envelope is the frame delivered to subscribers and carried over Redis.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sentAt"`
}

func NewEnvelope(channel, event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Channel: channel, Event: event, Payload: raw, SentAt: time.Now().UTC()}, nil
}

// Subscription receives envelopes for the channels it was opened with.
// Slow readers lose frames rather than stall the hub.
type Subscription struct {
	C        <-chan Envelope
	ch       chan Envelope
	channels []string
}

// Hub routes envelopes to the local websocket sessions subscribed to a
// channel. It is also a ports.RealtimePublisher for single-process setups.
type Hub struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, subs: map[string]map[*Subscription]struct{}{}}
}

func (h *Hub) Subscribe(buffer int, channels ...string) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Envelope, buffer)
	sub := &Subscription{C: ch, ch: ch, channels: channels}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range channels {
		set, ok := h.subs[name]
		if !ok {
			set = map[*Subscription]struct{}{}
			h.subs[name] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := false
	for _, name := range sub.channels {
		set, ok := h.subs[name]
		if !ok {
			continue
		}
		if _, present := set[sub]; present {
			delete(set, sub)
			removed = true
		}
		if len(set) == 0 {
			delete(h.subs, name)
		}
	}
	if removed {
		close(sub.ch)
	}
}

// Deliver hands env to every local subscriber of its channel and returns
// how many received it.
func (h *Hub) Deliver(env Envelope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for sub := range h.subs[env.Channel] {
		select {
		case sub.ch <- env:
			delivered++
		default:
			h.logger.Warn("realtime frame dropped for slow subscriber",
				"module", "realtime",
				"layer", "adapter",
				"operation", "deliver",
				"outcome", "dropped",
				"channel", env.Channel,
				"event", env.Event,
			)
		}
	}
	return delivered
}

func (h *Hub) Publish(_ context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	h.Deliver(env)
	return nil
}

var _ ports.RealtimePublisher = (*Hub)(nil)
