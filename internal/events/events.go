// Package events holds the routing keys and payloads of domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RKAppointmentBooked    = "appointment.booked"
	RKAppointmentUpdated   = "appointment.updated"
	RKAppointmentCancelled = "appointment.cancelled"

	RKDoctorApproved = "doctor.approved"
	RKDoctorRejected = "doctor.rejected"
)

// Bindings are the keys the notifier queue listens on.
var Bindings = []string{"appointment.*", "doctor.*"}

type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Appointment is the payload of every appointment.* event.
type Appointment struct {
	EventID       string    `json:"event_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	AppointmentID string    `json:"appointment_id"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	VisitSummary  string    `json:"visit_summary,omitempty"`
	Customer      Party     `json:"customer"`
	Doctor        Party     `json:"doctor"`
}

// Doctor is the payload of doctor.* events.
type Doctor struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Doctor     Party     `json:"doctor"`
}

func NewID() string { return uuid.NewString() }

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}

// Publisher sends an event under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// LogPublisher only records events; used when no broker is configured.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) PublishJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.Log.Info("event", zap.String("key", key), zap.ByteString("payload", b))
	return nil
}
