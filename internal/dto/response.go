package dto

import (
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
)

type RsvpResponse struct {
	ID               string            `json:"id"`
	EventID          string            `json:"event_id"`
	UserID           string            `json:"user_id"`
	Status           models.RsvpStatus `json:"status"`
	RsvpTime         time.Time         `json:"rsvp_time"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	WaitlistPosition *int              `json:"waitlist_position,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type EventStatusResponse struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Capacity          *int       `json:"capacity"`
	RsvpBuffer        int        `json:"rsvp_buffer"`
	IsWaitlistEnabled bool       `json:"is_waitlist_enabled"`
	RsvpCloseTime     *time.Time `json:"rsvp_close_time,omitempty"`
	Going             int64      `json:"going_count"`
	Interested        int64      `json:"interested_count"`
	Waitlisted        int64      `json:"waitlisted_count"`
	SpotsLeft         *int       `json:"spots_left,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToRsvpResponse(r *models.Rsvp) RsvpResponse {
	return RsvpResponse{
		ID:               r.ID,
		EventID:          r.EventID,
		UserID:           r.UserID,
		Status:           r.Status,
		RsvpTime:         r.RsvpTime,
		CancelledAt:      r.CancelledAt,
		WaitlistPosition: r.WaitlistPosition,
		CreatedAt:        r.CreatedAt,
	}
}
