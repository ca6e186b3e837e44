package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhifarskiy/eatune/internal/jukebox"
)

type playerRequest struct {
	VenueID string `json:"venueId"`
}

// NextTrack is called by the player client when the current track
// finished (or staff pressed skip).
func (s *Server) NextTrack(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VenueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Venue ID is required"})
		return
	}

	next, err := s.svc.Advance(req.VenueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Venue not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "nextEntry": next})
}

// PreviousTrack rewinds to the most recently finished track.
func (s *Server) PreviousTrack(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VenueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Venue ID is required"})
		return
	}

	current, err := s.svc.Rewind(req.VenueID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "currentEntry": current})
	case errors.Is(err, jukebox.ErrEmptyHistory):
		c.JSON(http.StatusNotFound, gin.H{"error": "No previous track in history."})
	case errors.Is(err, jukebox.ErrUnknownVenue):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Venue not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// PlayerControl broadcasts play/pause to every display in the venue.
// Nothing is persisted; displays apply it to their local player.
func (s *Server) PlayerControl(c *gin.Context) {
	action := c.Param("action")
	if action != "play" && action != "pause" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action."})
		return
	}

	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VenueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Venue ID is required"})
		return
	}

	s.hub.PlayerControl(req.VenueID, action)
	c.JSON(http.StatusOK, gin.H{"success": true, "action": action})
}
