package service

import (
	"context"
	"testing"
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRsvp(t *testing.T, repo *fakeRsvpRepo, userID, eventID string, status models.RsvpStatus, rsvpTime time.Time, position *int) *models.Rsvp {
	t.Helper()
	r := &models.Rsvp{
		UserID:           userID,
		EventID:          eventID,
		Status:           status,
		RsvpTime:         rsvpTime,
		WaitlistPosition: position,
	}
	require.NoError(t, repo.Save(context.Background(), r))
	return r
}

func newTestPromoter(eventRepo *fakeEventRepo, rsvpRepo *fakeRsvpRepo) (WaitlistPromoter, *fakeNotificationRepo) {
	notifRepo := &fakeNotificationRepo{}
	return NewWaitlistPromoter(rsvpRepo, eventRepo, notifRepo, nil, zerolog.Nop()), notifRepo
}

func TestPromoteNext_FIFO(t *testing.T) {
	eventRepo := newFakeEventRepo(approvedEvent(eventA, intPtr(2), 0, true))
	rsvpRepo := newFakeRsvpRepo()
	promoter, notifRepo := newTestPromoter(eventRepo, rsvpRepo)
	ctx := context.Background()
	now := time.Now()

	seedRsvp(t, rsvpRepo, userA, eventA, models.StatusGoing, now, nil)
	// B joined the waitlist before C
	b := seedRsvp(t, rsvpRepo, userB, eventA, models.StatusWaitlisted, now.Add(time.Second), intPtr(1))
	seedRsvp(t, rsvpRepo, userC, eventA, models.StatusWaitlisted, now.Add(2*time.Second), intPtr(2))

	promoted, err := promoter.PromoteNext(ctx, eventA, now.Add(time.Minute))

	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, b.ID, promoted.ID)
	assert.Equal(t, models.StatusGoing, promoted.Status)
	assert.Nil(t, promoted.WaitlistPosition)

	// C moved up to position 1
	remaining, err := rsvpRepo.FindActiveByUserAndEvent(ctx, userC, eventA)
	require.NoError(t, err)
	require.NotNil(t, remaining.WaitlistPosition)
	assert.Equal(t, 1, *remaining.WaitlistPosition)

	require.Len(t, notifRepo.created, 1)
	n := notifRepo.created[0]
	assert.Equal(t, userB, n.UserID)
	assert.Equal(t, models.NotificationTypeWaitlistPromotion, n.Type)
	assert.Equal(t, "You're in!", n.Title)
	assert.Contains(t, n.Body, "Robotics Club Demo Night")
	assert.Equal(t, "event", n.EntityType)
	assert.Equal(t, eventA, n.EntityID)
}

func TestPromoteNext_NoFreeSlot(t *testing.T) {
	eventRepo := newFakeEventRepo(approvedEvent(eventA, intPtr(1), 0, true))
	rsvpRepo := newFakeRsvpRepo()
	promoter, notifRepo := newTestPromoter(eventRepo, rsvpRepo)
	now := time.Now()

	seedRsvp(t, rsvpRepo, userA, eventA, models.StatusGoing, now, nil)
	seedRsvp(t, rsvpRepo, userB, eventA, models.StatusWaitlisted, now.Add(time.Second), intPtr(1))

	promoted, err := promoter.PromoteNext(context.Background(), eventA, now.Add(time.Minute))

	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Empty(t, notifRepo.created)

	still, err := rsvpRepo.FindActiveByUserAndEvent(context.Background(), userB, eventA)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitlisted, still.Status)
}

func TestPromoteNext_EmptyWaitlist(t *testing.T) {
	eventRepo := newFakeEventRepo(approvedEvent(eventA, intPtr(5), 0, true))
	rsvpRepo := newFakeRsvpRepo()
	promoter, _ := newTestPromoter(eventRepo, rsvpRepo)

	promoted, err := promoter.PromoteNext(context.Background(), eventA, time.Now())

	require.NoError(t, err)
	assert.Nil(t, promoted)
}

func TestPromoteNext_EventNotFound(t *testing.T) {
	promoter, _ := newTestPromoter(newFakeEventRepo(), newFakeRsvpRepo())

	_, err := promoter.PromoteNext(context.Background(), eventA, time.Now())

	assert.ErrorIs(t, err, ErrEventNotFound)
}

// Losing the conditional transition aborts quietly: no renumbering, no
// notification, no error.
func TestPromoteNext_LostRace(t *testing.T) {
	eventRepo := newFakeEventRepo(approvedEvent(eventA, intPtr(2), 0, true))
	rsvpRepo := newFakeRsvpRepo()
	promoter, notifRepo := newTestPromoter(eventRepo, rsvpRepo)
	now := time.Now()

	seedRsvp(t, rsvpRepo, userB, eventA, models.StatusWaitlisted, now, intPtr(1))
	seedRsvp(t, rsvpRepo, userC, eventA, models.StatusWaitlisted, now.Add(time.Second), intPtr(2))
	rsvpRepo.failConditional = true

	promoted, err := promoter.PromoteNext(context.Background(), eventA, now.Add(time.Minute))

	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Empty(t, notifRepo.created)

	// positions untouched
	c, err := rsvpRepo.FindActiveByUserAndEvent(context.Background(), userC, eventA)
	require.NoError(t, err)
	require.NotNil(t, c.WaitlistPosition)
	assert.Equal(t, 2, *c.WaitlistPosition)
}

func TestPromoteNext_UnlimitedCapacity(t *testing.T) {
	eventRepo := newFakeEventRepo(approvedEvent(eventA, nil, 0, true))
	rsvpRepo := newFakeRsvpRepo()
	promoter, _ := newTestPromoter(eventRepo, rsvpRepo)
	now := time.Now()

	seedRsvp(t, rsvpRepo, userB, eventA, models.StatusWaitlisted, now, intPtr(1))

	promoted, err := promoter.PromoteNext(context.Background(), eventA, now.Add(time.Minute))

	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, models.StatusGoing, promoted.Status)
}

func TestSweep_PromotesAcrossEvents(t *testing.T) {
	eventB := "aaaaaaaa-0000-0000-0000-000000000002"
	eventFull := "aaaaaaaa-0000-0000-0000-000000000003"

	full := approvedEvent(eventFull, intPtr(1), 0, true)
	eventRepo := newFakeEventRepo(
		approvedEvent(eventA, intPtr(2), 0, true),
		approvedEvent(eventB, intPtr(2), 0, true),
		full,
	)
	rsvpRepo := newFakeRsvpRepo()
	promoter, notifRepo := newTestPromoter(eventRepo, rsvpRepo)
	now := time.Now()

	seedRsvp(t, rsvpRepo, userA, eventA, models.StatusWaitlisted, now, intPtr(1))
	seedRsvp(t, rsvpRepo, userB, eventB, models.StatusWaitlisted, now, intPtr(1))
	// eventFull has no free slot
	seedRsvp(t, rsvpRepo, userC, eventFull, models.StatusGoing, now, nil)
	seedRsvp(t, rsvpRepo, userD, eventFull, models.StatusWaitlisted, now.Add(time.Second), intPtr(1))

	promoted, err := promoter.Sweep(context.Background(), now.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, 2, promoted)
	assert.Len(t, notifRepo.created, 2)

	stillWaiting, err := rsvpRepo.FindActiveByUserAndEvent(context.Background(), userD, eventFull)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitlisted, stillWaiting.Status)
}

func TestSweep_NoWaitlists(t *testing.T) {
	promoter, _ := newTestPromoter(newFakeEventRepo(), newFakeRsvpRepo())

	promoted, err := promoter.Sweep(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Zero(t, promoted)
}
