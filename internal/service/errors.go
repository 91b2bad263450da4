package service

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventNotEligible    = errors.New("event is not open for rsvp")
	ErrEventAlreadyStarted = errors.New("event has already started")
	ErrRsvpWindowClosed    = errors.New("rsvp deadline has passed")
	ErrEventFull           = errors.New("event is full")
	ErrDuplicateRsvp       = errors.New("user already has an active rsvp for this event")
	ErrRsvpNotFound        = errors.New("rsvp not found")
	ErrStoreConflict       = errors.New("conditional update lost to a concurrent writer")
)
