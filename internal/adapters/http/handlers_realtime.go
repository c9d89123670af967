package http

import (
	"context"
	"net/http"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/realtime"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const realtimeWriteTimeout = 5 * time.Second

// streamRealtime upgrades to a websocket carrying the caller's own channel
// and, for staff, the governance channel.
func (h *Handler) streamRealtime(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	opts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		opts.OriginPatterns = h.originPatterns
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		logHTTPOperationError(r.Context(), "realtime_accept", http.StatusBadRequest, "UPGRADE_FAILED", "websocket upgrade failed", err)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	channels := []string{ports.UserChannel(actor.UserID)}
	if actor.Role.IsStaff() {
		channels = append(channels, ports.ChannelGovernance)
	}
	sub := h.hub.Subscribe(64, channels...)
	defer h.hub.Unsubscribe(sub)

	ready, _ := realtime.NewEnvelope("", "ready", map[string]any{"channels": channels})
	_ = wsjson.Write(ctx, conn, ready)

	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case env, ok := <-sub.C:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, realtimeWriteTimeout)
			err := wsjson.Write(writeCtx, conn, env)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}
