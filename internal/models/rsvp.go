package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RsvpStatus string

const (
	StatusGoing      RsvpStatus = "going"
	StatusInterested RsvpStatus = "interested"
	StatusWaitlisted RsvpStatus = "waitlisted"
	StatusCancelled  RsvpStatus = "cancelled"
)

// Rsvp is one user's standing for one event. A cancelled row is kept and
// revived on re-RSVP rather than inserting a duplicate; a partial unique
// index on (event_id, user_id) WHERE status <> 'cancelled' enforces at
// most one active row per pair.
type Rsvp struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID     string     `gorm:"type:uuid;not null;index" json:"event_id"`
	Status      RsvpStatus `gorm:"type:varchar(20);not null;default:'going'" json:"status"`
	RsvpTime    time.Time  `gorm:"not null" json:"rsvp_time"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// 1-based, contiguous among an event's waitlisted rows, ordered by
	// rsvp_time. Null unless status is waitlisted.
	WaitlistPosition *int `json:"waitlist_position,omitempty"`

	// Reserved for a time-boxed acceptance window on promotion.
	// Always written null for now.
	PromotionExpiresAt *time.Time `json:"promotion_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (r *Rsvp) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
