package consumer

import (
	"encoding/json"

	"github.com/campusconnect/rsvp-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventConsumer mirrors the directory service's event records into the
// local DB. Events are read-only here; every lifecycle message is an
// upsert keyed by the directory's event ID.
type EventConsumer struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewEventConsumer(db *gorm.DB, log zerolog.Logger) *EventConsumer {
	return &EventConsumer{db: db, log: log}
}

func (ec *EventConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(msg)
		}
		ec.log.Info().Msg("event sync channel closed, stopping consumer")
	}()
}

func (ec *EventConsumer) handleMessage(msg amqp.Delivery) {
	var event models.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		ec.log.Error().Err(err).Msg("event sync: failed to unmarshal")
		msg.Nack(false, false)
		return
	}

	result := ec.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "start_time", "end_time", "capacity", "rsvp_buffer",
			"is_waitlist_enabled", "rsvp_close_time", "status", "updated_at",
		}),
	}).Create(&event)

	if result.Error != nil {
		ec.log.Error().Err(result.Error).Str("event_id", event.ID).Msg("event sync: upsert failed")
		msg.Nack(false, true) // requeue
		return
	}

	ec.log.Info().Str("event_id", event.ID).Str("title", event.Title).Str("status", string(event.Status)).Msg("event synced")
	msg.Ack(false)
}
