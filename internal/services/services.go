// Package services holds the booking business rules: registration and login,
// the public doctor directory, the appointment ledger and the admin workflow.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
)

var tracer = otel.Tracer("github.com/harentsoaR/docspot-api/internal/services")

// Clock is swapped in tests.
type Clock func() time.Time

func parseID(hex, notFoundMsg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFoundMsg)
	}
	return id, nil
}

func isNotFound(err error) bool  { return errors.Is(err, store.ErrNotFound) }
func isDuplicate(err error) bool { return errors.Is(err, store.ErrDuplicate) }
func isStale(err error) bool     { return errors.Is(err, store.ErrStale) }

// notifier publishes events without ever failing the calling request.
type notifier struct {
	pub events.Publisher
	log *zap.Logger
}

func (n notifier) publish(ctx context.Context, key string, payload any) {
	if n.pub == nil {
		return
	}
	if err := n.pub.PublishJSON(ctx, key, payload); err != nil {
		n.log.Warn("publish event failed", zap.String("key", key), zap.Error(err))
	}
}

func party(u *models.User) events.Party {
	if u == nil {
		return events.Party{}
	}
	return events.Party{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}

func appointmentEvent(now time.Time, apt *models.Appointment, customer, doctor *models.User) events.Appointment {
	return events.Appointment{
		EventID:       events.NewID(),
		OccurredAt:    now.UTC(),
		AppointmentID: apt.ID.Hex(),
		Status:        string(apt.Status),
		Date:          apt.Date.UTC().Format(models.DateLayout),
		Time:          apt.Time,
		VisitSummary:  apt.VisitSummary,
		Customer:      party(customer),
		Doctor:        party(doctor),
	}
}
