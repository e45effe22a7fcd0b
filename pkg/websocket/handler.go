package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler starts the hub; it stops when ctx is cancelled. allowedOrigins
// empty or containing "*" accepts any origin.
func NewHandler(ctx context.Context, log logrus.FieldLogger, allowedOrigins []string) *Handler {
	hub := NewHub(log)
	go hub.Run(ctx)

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Serve upgrades the request and subscribes the connection to userID's events.
func (h *Handler) Serve(c *gin.Context, userID int64) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userID)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// SendUserNotification pushes an event to every dashboard open for userID.
func (h *Handler) SendUserNotification(userID int64, notificationType string, data map[string]interface{}) {
	watchers := h.hub.ClientCount(userID)
	if watchers == 0 {
		return
	}
	h.hub.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"type":     notificationType,
		"watchers": watchers,
	}).Debug("Pushing dashboard event")

	h.hub.SendToUser(userID, Message{
		Type:      notificationType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}
