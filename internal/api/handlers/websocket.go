package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/blazeintel/diamond-analytics/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, check against allowed origins
		return true
	},
}

type WebSocketHandler struct {
	hub *services.WebSocketHub
}

func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and subscribes it to simulation
// progress events. The welcome message is queued before the client is
// registered so it is the first frame the writer sends.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	client := services.NewProgressClient(h.hub, conn)
	welcome := map[string]interface{}{
		"type":      "welcome",
		"message":   "Connected to Diamond Analytics progress feed",
		"timestamp": time.Now().UTC(),
	}
	if err := client.EnqueueJSON(welcome); err != nil {
		logrus.Errorf("Failed to queue welcome message: %v", err)
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
