package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/campusconnect/rsvp-service/internal/repository"
	"github.com/campusconnect/rsvp-service/pkg/rabbitmq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type WaitlistPromoter interface {
	// PromoteNext moves the earliest waitlisted RSVP to going if a slot
	// is free. Returns nil without error when there is nothing to do or
	// when the conditional transition lost a race.
	PromoteNext(ctx context.Context, eventID string, now time.Time) (*models.Rsvp, error)
	// Sweep runs PromoteNext for every event with a waitlist. Self-healing
	// backstop for promotions missed on cancellation.
	Sweep(ctx context.Context, now time.Time) (int, error)
	// RenumberWaitlist closes the gap left when a waitlisted RSVP is
	// cancelled. Best-effort.
	RenumberWaitlist(ctx context.Context, eventID string)
}

type waitlistPromoter struct {
	rsvpRepo  repository.RsvpRepository
	eventRepo repository.EventRepository
	notifRepo repository.NotificationRepository
	publisher *rabbitmq.Publisher
	log       zerolog.Logger
}

func NewWaitlistPromoter(rsvpRepo repository.RsvpRepository, eventRepo repository.EventRepository, notifRepo repository.NotificationRepository, publisher *rabbitmq.Publisher, log zerolog.Logger) WaitlistPromoter {
	return &waitlistPromoter{
		rsvpRepo:  rsvpRepo,
		eventRepo: eventRepo,
		notifRepo: notifRepo,
		publisher: publisher,
		log:       log,
	}
}

func (p *waitlistPromoter) PromoteNext(ctx context.Context, eventID string, now time.Time) (*models.Rsvp, error) {
	event, err := p.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	goingCount, err := p.rsvpRepo.CountByStatus(ctx, eventID, models.StatusGoing)
	if err != nil {
		return nil, err
	}
	if max, limited := event.MaxAttendees(); limited && goingCount >= int64(max) {
		return nil, nil
	}

	next, err := p.rsvpRepo.FindFirstWaitlisted(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Conditional on the row still being waitlisted: two promoters
	// racing on the same slot must not both succeed.
	ok, err := p.rsvpRepo.UpdateStatusIf(ctx, next.ID, models.StatusWaitlisted, models.StatusGoing, map[string]any{
		"waitlist_position":    nil,
		"promotion_expires_at": nil,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race. Skip renumbering too; the next trigger or
		// sweep picks it up.
		p.log.Debug().Err(ErrStoreConflict).Str("rsvp_id", next.ID).Str("event_id", eventID).Msg("promotion skipped")
		return nil, nil
	}

	next.Status = models.StatusGoing
	next.WaitlistPosition = nil
	next.PromotionExpiresAt = nil

	p.RenumberWaitlist(ctx, eventID)
	p.notifyPromotion(ctx, event, next)

	p.log.Info().Str("rsvp_id", next.ID).Str("user_id", next.UserID).Str("event_id", eventID).Msg("promoted from waitlist")
	return next, nil
}

func (p *waitlistPromoter) Sweep(ctx context.Context, now time.Time) (int, error) {
	eventIDs, err := p.rsvpRepo.ListEventIDsWithWaitlist(ctx)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, eventID := range eventIDs {
		rsvp, err := p.PromoteNext(ctx, eventID, now)
		if err != nil {
			p.log.Warn().Err(err).Str("event_id", eventID).Msg("sweep promotion failed")
			continue
		}
		if rsvp != nil {
			promoted++
		}
	}
	return promoted, nil
}

// RenumberWaitlist reassigns positions 1..N by rsvp_time. Best-effort:
// a gap left by a failure here self-heals on the next promotion.
func (p *waitlistPromoter) RenumberWaitlist(ctx context.Context, eventID string) {
	status := models.StatusWaitlisted
	remaining, err := p.rsvpRepo.FindByEventID(ctx, eventID, &status)
	if err != nil {
		p.log.Warn().Err(err).Str("event_id", eventID).Msg("waitlist renumbering: list failed")
		return
	}
	for i, r := range remaining {
		want := i + 1
		if r.WaitlistPosition != nil && *r.WaitlistPosition == want {
			continue
		}
		if err := p.rsvpRepo.SetWaitlistPosition(ctx, r.ID, want); err != nil {
			p.log.Warn().Err(err).Str("rsvp_id", r.ID).Msg("waitlist renumbering: update failed")
		}
	}
}

func (p *waitlistPromoter) notifyPromotion(ctx context.Context, event *models.Event, rsvp *models.Rsvp) {
	n := &models.Notification{
		UserID:     rsvp.UserID,
		Type:       models.NotificationTypeWaitlistPromotion,
		Title:      "You're in!",
		Body:       fmt.Sprintf("You've been promoted from the waitlist for %q.", event.Title),
		EntityType: "event",
		EntityID:   event.ID,
	}
	if err := p.notifRepo.Create(ctx, n); err != nil {
		p.log.Warn().Err(err).Str("user_id", rsvp.UserID).Msg("promotion notification insert failed")
	}

	if p.publisher != nil {
		if err := p.publisher.Publish("rsvp.promoted", rsvp); err != nil {
			p.log.Warn().Err(err).Str("rsvp_id", rsvp.ID).Msg("promotion publish failed")
		}
	}
}
