package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationTypeWaitlistPromotion = "waitlist_promotion"

// Notification is a pending in-app notification row. Delivery is handled
// by an external worker; this service only records the decision to notify.
type Notification struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       string     `gorm:"type:varchar(40);not null" json:"type"`
	Title      string     `gorm:"not null" json:"title"`
	Body       string     `json:"body"`
	EntityType string     `gorm:"type:varchar(20)" json:"entity_type"`
	EntityID   string     `gorm:"type:uuid" json:"entity_id"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
