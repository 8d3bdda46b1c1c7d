package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fueldash/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP connections to websockets and registers them
// for live notification delivery.
type WSHandler struct {
	registry *ws.Registry
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(registry *ws.Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

// Connect handles GET /v1/ws?user_id=
func (h *WSHandler) Connect(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	conn := h.registry.Add(userID, socket)
	defer h.registry.Remove(userID, conn)

	// The server never acts on inbound frames; the read loop only
	// detects disconnects and answers pings.
	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			return
		}
	}
}
