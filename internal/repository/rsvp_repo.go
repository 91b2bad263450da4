package repository

import (
	"context"

	"github.com/campusconnect/rsvp-service/internal/models"
	"gorm.io/gorm"
)

type RsvpRepository interface {
	// Save inserts a new row (empty ID) or writes every column of an
	// existing one, including nulls, used to revive cancelled rows.
	Save(ctx context.Context, rsvp *models.Rsvp) error
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error)
	FindActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error)
	FindByEventID(ctx context.Context, eventID string, status *models.RsvpStatus) ([]models.Rsvp, error)
	CountByStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error)
	FindFirstWaitlisted(ctx context.Context, eventID string) (*models.Rsvp, error)
	// UpdateStatusIf transitions a row to status `to` plus any extra
	// fields, conditioned on its current status still being `from`.
	// Reports whether a row was actually updated.
	UpdateStatusIf(ctx context.Context, id string, from, to models.RsvpStatus, fields map[string]any) (bool, error)
	SetWaitlistPosition(ctx context.Context, id string, position int) error
	ListEventIDsWithWaitlist(ctx context.Context) ([]string, error)
}

type rsvpRepository struct {
	db *gorm.DB
}

func NewRsvpRepository(db *gorm.DB) RsvpRepository {
	return &rsvpRepository{db: db}
}

func (r *rsvpRepository) Save(ctx context.Context, rsvp *models.Rsvp) error {
	if rsvp.ID == "" {
		return r.db.WithContext(ctx).Create(rsvp).Error
	}
	return r.db.WithContext(ctx).Save(rsvp).Error
}

// FindByUserAndEvent returns the row for the pair regardless of status,
// so cancelled rows can be revived instead of duplicated.
func (r *rsvpRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error) {
	var rsvp models.Rsvp
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Order("rsvp_time DESC").
		First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *rsvpRepository) FindActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error) {
	var rsvp models.Rsvp
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status <> ?", userID, eventID, models.StatusCancelled).
		First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *rsvpRepository) FindByEventID(ctx context.Context, eventID string, status *models.RsvpStatus) ([]models.Rsvp, error) {
	var rsvps []models.Rsvp
	q := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("rsvp_time ASC").Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *rsvpRepository) CountByStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rsvp{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

// FindFirstWaitlisted returns the earliest waitlisted RSVP for promotion.
func (r *rsvpRepository) FindFirstWaitlisted(ctx context.Context, eventID string) (*models.Rsvp, error) {
	var rsvp models.Rsvp
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.StatusWaitlisted).
		Order("rsvp_time ASC, id ASC").
		First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *rsvpRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.RsvpStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Rsvp{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *rsvpRepository) SetWaitlistPosition(ctx context.Context, id string, position int) error {
	return r.db.WithContext(ctx).
		Model(&models.Rsvp{}).
		Where("id = ?", id).
		Update("waitlist_position", position).Error
}

func (r *rsvpRepository) ListEventIDsWithWaitlist(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Rsvp{}).
		Where("status = ?", models.StatusWaitlisted).
		Distinct().
		Pluck("event_id", &ids).Error
	return ids, err
}
