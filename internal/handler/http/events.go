package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	// GetSSEToken issues a short-lived token for the event stream
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	// Stream pushes attendance and regularization changes to the browser
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	jwtService jwt.Service
	sessions   session.SessionRepository
	hub        *sse.Hub
}

func NewEventsHandler(jwtService jwt.Service, sessions session.SessionRepository, hub *sse.Hub) EventsHandler {
	return &eventsHandlerImpl{
		jwtService: jwtService,
		sessions:   sessions,
		hub:        hub,
	}
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *eventsHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(jwt.SessionClaims{
		SessionID: sess.ID,
		UserID:    sess.User.ID,
		Role:      sess.Role,
	})
	if err != nil {
		slog.Error("Failed to generate SSE token", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, auth.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection. The session must still exist when the
// stream opens.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token comes in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	sess, err := h.sessions.Get(r.Context(), claims.SessionID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sse.UserTopic(sess.User.ID), sse.RoleTopic(string(sess.Role)))
	defer cleanup()

	fmt.Fprintf(w, "event: %s\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", sse.EventConnected, sess.User.ID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			if sess.IsExpired(time.Now()) {
				return
			}
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
