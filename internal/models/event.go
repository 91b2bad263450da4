package models

import "time"

type EventStatus string

const (
	EventStatusDraft           EventStatus = "draft"
	EventStatusPendingApproval EventStatus = "pending_approval"
	EventStatusApproved        EventStatus = "approved"
	EventStatusCancelled       EventStatus = "cancelled"
	EventStatusCompleted       EventStatus = "completed"
	EventStatusArchived        EventStatus = "archived"
)

// Event is owned by the directory service and synced into the local DB
// over RabbitMQ. This service only reads it.
type Event struct {
	ID                string      `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string      `gorm:"not null" json:"title"`
	StartTime         time.Time   `gorm:"not null" json:"start_time"`
	EndTime           time.Time   `gorm:"not null" json:"end_time"`
	Capacity          *int        `json:"capacity"`
	RsvpBuffer        int         `gorm:"not null;default:0" json:"rsvp_buffer"`
	IsWaitlistEnabled bool        `gorm:"not null;default:false" json:"is_waitlist_enabled"`
	RsvpCloseTime     *time.Time  `json:"rsvp_close_time"`
	Status            EventStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// MaxAttendees returns the capacity ceiling including the overbooking
// buffer. limited is false when the event has no capacity set.
func (e *Event) MaxAttendees() (max int, limited bool) {
	if e.Capacity == nil {
		return 0, false
	}
	return *e.Capacity + e.RsvpBuffer, true
}
