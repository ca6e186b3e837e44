package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhifarskiy/eatune/internal/jukebox"
)

type addRequest struct {
	TrackID  string `json:"id"`
	VenueID  string `json:"venueId"`
	DeviceID string `json:"deviceId"`
}

// AddToQueue handles a patron's track order.
func (s *Server) AddToQueue(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TrackID == "" || req.VenueID == "" || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Track ID, Venue ID, and Device ID are required"})
		return
	}

	err := s.svc.Enqueue(req.VenueID, req.TrackID, req.DeviceID)
	if err == nil {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Track added to the queue!"})
		return
	}

	var cdErr *jukebox.CooldownError
	switch {
	case errors.As(err, &cdErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":           cdErr.Error(),
			"cooldownType":    string(cdErr.Kind),
			"timeLeftSeconds": cdErr.SecondsRemaining,
		})
	case errors.Is(err, jukebox.ErrDuplicateInQueue):
		c.JSON(http.StatusConflict, gin.H{"error": "This track is already in the queue"})
	case errors.Is(err, jukebox.ErrTrackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
	default:
		slog.Error("enqueue failed", "venue", req.VenueID, "track", req.TrackID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

type adminQueueRequest struct {
	TrackID string `json:"trackId"`
	VenueID string `json:"venueId"`
}

// AddNext inserts a track right after the playing entry (staff only).
func (s *Server) AddNext(c *gin.Context) {
	var req adminQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	switch err := s.svc.EnqueueNext(req.VenueID, req.TrackID); {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, jukebox.ErrUnknownVenue):
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
	case errors.Is(err, jukebox.ErrTrackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// RemoveFromQueue deletes an upcoming entry (staff only). The playing
// entry cannot be removed.
func (s *Server) RemoveFromQueue(c *gin.Context) {
	var req adminQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	switch err := s.svc.Remove(req.VenueID, req.TrackID); {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, jukebox.ErrUnknownVenue):
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
	case errors.Is(err, jukebox.ErrCannotRemove):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove the currently playing track or track not found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
