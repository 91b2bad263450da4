package service

import (
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
)

// DecideRsvpStatus is the capacity policy: given an event snapshot and a
// fresh count of going RSVPs, it decides whether a request for
// `requested` is admitted as-is, diverted to the waitlist, or rejected.
// Pure: no side effects, deterministic given inputs and now.
//
// Interested RSVPs are a soft signal: always admitted, never counted
// toward capacity and never waitlisted.
func DecideRsvpStatus(event *models.Event, goingCount int64, requested models.RsvpStatus, now time.Time) (models.RsvpStatus, error) {
	if event.Status != models.EventStatusApproved {
		return "", ErrEventNotEligible
	}
	if !now.Before(event.StartTime) {
		return "", ErrEventAlreadyStarted
	}
	if event.RsvpCloseTime != nil && !now.Before(*event.RsvpCloseTime) {
		return "", ErrRsvpWindowClosed
	}

	if requested == models.StatusInterested {
		return models.StatusInterested, nil
	}

	max, limited := event.MaxAttendees()
	if !limited || goingCount < int64(max) {
		return models.StatusGoing, nil
	}
	if event.IsWaitlistEnabled {
		return models.StatusWaitlisted, nil
	}
	return "", ErrEventFull
}
