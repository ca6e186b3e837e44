package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhifarskiy/eatune/internal/jukebox"
)

// GetTracks returns the full catalog as loaded at startup. Patrons
// browse this list to pick a track to order.
func (s *Server) GetTracks(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.All())
}

// GetQueue returns the venue's current queue, now playing first.
func (s *Server) GetQueue(c *gin.Context) {
	venueID := c.Param("venueId")

	queue, err := s.svc.Queue(venueID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		return
	}
	c.JSON(http.StatusOK, queue)
}

// GetHistory returns finished tracks, most recent first.
func (s *Server) GetHistory(c *gin.Context) {
	venueID := c.Param("venueId")

	history, err := s.svc.History(venueID)
	if err != nil {
		if errors.Is(err, jukebox.ErrUnknownVenue) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, history)
}
