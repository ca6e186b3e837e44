package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jhifarskiy/eatune/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Patron phones connect from the venue wifi with arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriberMessage is the only inbound message shape we accept.
// Anything else is logged and dropped; a bad message never kills the
// connection.
type subscriberMessage struct {
	Type        string  `json:"type"`
	VenueID     string  `json:"venueId"`
	CurrentTime float64 `json:"currentTime"`
}

// HandleSubscriber upgrades the connection and keeps the subscriber in
// the venue's fanout set until it disconnects.
func (s *Server) HandleSubscriber(c *gin.Context) {
	venueID := c.Query("venueId")
	if venueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venueId is required"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "venue", venueID, "error", err)
		return
	}

	conn := ws.NewConn(uuid.NewString(), wsConn)
	s.hub.Register(venueID, conn)

	// First contact may create the venue; filler is topped up and the
	// fresh snapshot goes out to everyone, including this subscriber.
	s.svc.Connect(venueID)

	defer func() {
		s.hub.Unregister(venueID, conn)
		conn.Close()
	}()

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			return
		}

		var msg subscriberMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("ignoring malformed subscriber message", "venue", venueID, "conn", conn.ID(), "error", err)
			continue
		}

		if msg.Type == "progress_update" && msg.VenueID == venueID {
			s.hub.ForwardProgress(venueID, msg.CurrentTime)
		}
	}
}
