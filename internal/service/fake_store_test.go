package service

import (
	"context"
	"sort"
	"sync"

	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the GORM repositories, good enough to run the
// full rsvp/cancel/promote flows without a database.

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[string]models.Event)}
	for _, e := range events {
		r.events[e.ID] = *e
	}
	return r
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

type fakeRsvpRepo struct {
	mu    sync.Mutex
	rsvps map[string]models.Rsvp

	// when set, UpdateStatusIf reports no row matched, simulating losing
	// the conditional-update race
	failConditional bool
}

func newFakeRsvpRepo() *fakeRsvpRepo {
	return &fakeRsvpRepo{rsvps: make(map[string]models.Rsvp)}
}

func (r *fakeRsvpRepo) Save(ctx context.Context, rsvp *models.Rsvp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rsvp.ID == "" {
		rsvp.ID = uuid.NewString()
	}
	r.rsvps[rsvp.ID] = *rsvp
	return nil
}

func (r *fakeRsvpRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Rsvp
	for _, v := range r.rsvps {
		if v.UserID == userID && v.EventID == eventID {
			v := v
			if found == nil || v.RsvpTime.After(found.RsvpTime) {
				found = &v
			}
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (r *fakeRsvpRepo) FindActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Rsvp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.rsvps {
		if v.UserID == userID && v.EventID == eventID && v.Status != models.StatusCancelled {
			v := v
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRsvpRepo) FindByEventID(ctx context.Context, eventID string, status *models.RsvpStatus) ([]models.Rsvp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rsvp
	for _, v := range r.rsvps {
		if v.EventID != eventID {
			continue
		}
		if status != nil && v.Status != *status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RsvpTime.Equal(out[j].RsvpTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].RsvpTime.Before(out[j].RsvpTime)
	})
	return out, nil
}

func (r *fakeRsvpRepo) CountByStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.rsvps {
		if v.EventID == eventID && v.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeRsvpRepo) FindFirstWaitlisted(ctx context.Context, eventID string) (*models.Rsvp, error) {
	status := models.StatusWaitlisted
	all, _ := r.FindByEventID(ctx, eventID, &status)
	if len(all) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &all[0], nil
}

func (r *fakeRsvpRepo) UpdateStatusIf(ctx context.Context, id string, from, to models.RsvpStatus, fields map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failConditional {
		return false, nil
	}
	v, ok := r.rsvps[id]
	if !ok || v.Status != from {
		return false, nil
	}
	v.Status = to
	for k, val := range fields {
		switch k {
		case "waitlist_position":
			if val == nil {
				v.WaitlistPosition = nil
			} else {
				p := val.(int)
				v.WaitlistPosition = &p
			}
		case "promotion_expires_at":
			v.PromotionExpiresAt = nil
		}
	}
	r.rsvps[id] = v
	return true, nil
}

func (r *fakeRsvpRepo) SetWaitlistPosition(ctx context.Context, id string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rsvps[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.WaitlistPosition = &position
	r.rsvps[id] = v
	return nil
}

func (r *fakeRsvpRepo) ListEventIDsWithWaitlist(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, v := range r.rsvps {
		if v.Status == models.StatusWaitlisted && !seen[v.EventID] {
			seen[v.EventID] = true
			ids = append(ids, v.EventID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.created = append(r.created, *n)
	return nil
}
