package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/campusconnect/rsvp-service/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RsvpService interface {
	Rsvp(ctx context.Context, userID, eventID string, requested models.RsvpStatus, now time.Time) (*models.Rsvp, error)
	CancelRsvp(ctx context.Context, userID, eventID string, now time.Time) (*models.Rsvp, error)
	GetRsvp(ctx context.Context, userID, eventID string) (*models.Rsvp, error)
	ListRsvps(ctx context.Context, eventID string, status *models.RsvpStatus) ([]models.Rsvp, error)
}

type rsvpService struct {
	rsvpRepo  repository.RsvpRepository
	eventRepo repository.EventRepository
	promoter  WaitlistPromoter
	log       zerolog.Logger
}

func NewRsvpService(rsvpRepo repository.RsvpRepository, eventRepo repository.EventRepository, promoter WaitlistPromoter, log zerolog.Logger) RsvpService {
	return &rsvpService{
		rsvpRepo:  rsvpRepo,
		eventRepo: eventRepo,
		promoter:  promoter,
		log:       log,
	}
}

// Rsvp creates or revives the RSVP for (userID, eventID). Counts are
// recomputed from the store on every call, never from cached counters.
// The partial unique index on active rows guards against concurrent
// duplicates.
func (s *rsvpService) Rsvp(ctx context.Context, userID, eventID string, requested models.RsvpStatus, now time.Time) (*models.Rsvp, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	existing, err := s.rsvpRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != models.StatusCancelled {
		return nil, ErrDuplicateRsvp
	}

	goingCount, err := s.rsvpRepo.CountByStatus(ctx, eventID, models.StatusGoing)
	if err != nil {
		return nil, err
	}

	status, err := DecideRsvpStatus(event, goingCount, requested, now)
	if err != nil {
		return nil, err
	}

	var position *int
	if status == models.StatusWaitlisted {
		waitlisted, err := s.rsvpRepo.CountByStatus(ctx, eventID, models.StatusWaitlisted)
		if err != nil {
			return nil, err
		}
		p := int(waitlisted) + 1
		position = &p
	}

	rsvp := existing
	if rsvp == nil {
		rsvp = &models.Rsvp{UserID: userID, EventID: eventID}
	}
	rsvp.Status = status
	rsvp.RsvpTime = now
	rsvp.CancelledAt = nil
	rsvp.WaitlistPosition = position
	rsvp.PromotionExpiresAt = nil

	if err := s.rsvpRepo.Save(ctx, rsvp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRsvp
		}
		return nil, err
	}

	return rsvp, nil
}

// CancelRsvp marks the active RSVP cancelled. Cancelling a going RSVP
// frees a slot, so the promoter runs afterwards, best-effort: a failed
// promotion never fails the cancellation, the next sweep retries it.
func (s *rsvpService) CancelRsvp(ctx context.Context, userID, eventID string, now time.Time) (*models.Rsvp, error) {
	rsvp, err := s.rsvpRepo.FindActiveByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRsvpNotFound
		}
		return nil, err
	}

	prior := rsvp.Status

	rsvp.Status = models.StatusCancelled
	rsvp.CancelledAt = &now
	rsvp.WaitlistPosition = nil
	rsvp.PromotionExpiresAt = nil

	if err := s.rsvpRepo.Save(ctx, rsvp); err != nil {
		return nil, err
	}

	switch prior {
	case models.StatusGoing:
		if _, err := s.promoter.PromoteNext(ctx, eventID, now); err != nil {
			s.log.Warn().Err(err).Str("event_id", eventID).Msg("waitlist promotion after cancel failed")
		}
	case models.StatusWaitlisted:
		s.promoter.RenumberWaitlist(ctx, eventID)
	}

	return rsvp, nil
}

func (s *rsvpService) GetRsvp(ctx context.Context, userID, eventID string) (*models.Rsvp, error) {
	rsvp, err := s.rsvpRepo.FindActiveByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRsvpNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (s *rsvpService) ListRsvps(ctx context.Context, eventID string, status *models.RsvpStatus) ([]models.Rsvp, error) {
	return s.rsvpRepo.FindByEventID(ctx, eventID, status)
}
