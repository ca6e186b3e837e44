package jukebox

import (
	"errors"
	"fmt"
)

var (
	// ErrTrackNotFound means the requested id is not in the catalog.
	ErrTrackNotFound = errors.New("track not found")

	// ErrDuplicateInQueue means a patron already has this track pending.
	ErrDuplicateInQueue = errors.New("track is already in the queue")

	// ErrUnknownVenue is returned by read-only operations on a venue
	// that has never been contacted.
	ErrUnknownVenue = errors.New("venue not found")

	// ErrEmptyHistory means there is nothing to rewind to yet.
	ErrEmptyHistory = errors.New("no previous track in history")

	// ErrCannotRemove covers removing the playing entry or a missing id.
	ErrCannotRemove = errors.New("cannot remove the currently playing track or track not found")
)

type CooldownKind string

const (
	CooldownUser  CooldownKind = "user"
	CooldownTrack CooldownKind = "track"
)

// CooldownError is returned when a request is rejected because either
// the requester or the track is still cooling down. SecondsRemaining is
// rounded up so clients can render an honest countdown.
type CooldownError struct {
	Kind             CooldownKind
	SecondsRemaining int
}

func (e *CooldownError) Error() string {
	if e.Kind == CooldownTrack {
		return fmt.Sprintf("this track played recently, try again in %ds", e.SecondsRemaining)
	}
	return fmt.Sprintf("you ordered a track recently, try again in %ds", e.SecondsRemaining)
}
