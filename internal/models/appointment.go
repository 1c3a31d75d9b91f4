package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// Active statuses hold their slot.
func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusScheduled
}

// Terminal statuses cannot be changed by the doctor anymore.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CustomerID   primitive.ObjectID `bson:"customer" json:"customer"`
	DoctorID     primitive.ObjectID `bson:"doctor" json:"doctor"`
	Date         time.Time          `bson:"date" json:"date"`
	Time         string             `bson:"time" json:"time"`
	Status       AppointmentStatus  `bson:"status" json:"status"`
	Documents    []string           `bson:"documents" json:"documents"`
	DoctorNotes  string             `bson:"doctorNotes" json:"doctorNotes"`
	VisitSummary string             `bson:"visitSummary" json:"visitSummary"`
	SlotKey      string             `bson:"slotKey,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SyncSlot sets SlotKey while the appointment is active and clears it otherwise.
func (a *Appointment) SyncSlot() {
	if a.Status.Active() {
		a.SlotKey = SlotKey(a.DoctorID, a.Date, a.Time)
		return
	}
	a.SlotKey = ""
}

// SlotKey identifies a (doctor, day, time label) slot. Labels that differ
// only in case or spacing ("10:00 AM", "10:00am") map to the same key, and
// clock times are folded to 24h form when they parse.
func SlotKey(doctorID primitive.ObjectID, date time.Time, label string) string {
	return doctorID.Hex() + "|" + date.UTC().Format(DateLayout) + "|" + NormalizeTimeLabel(label)
}

const DateLayout = "2006-01-02"

var clockLayouts = []string{"3:04PM", "15:04", "3PM"}

func NormalizeTimeLabel(label string) string {
	compact := strings.ToUpper(strings.Join(strings.Fields(label), ""))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, compact); err == nil {
			return t.Format("15:04")
		}
	}
	return compact
}

// ParseDate accepts a calendar day or an RFC3339 instant and returns UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// AppointmentView is an appointment with the counterpart's public fields attached.
type AppointmentView struct {
	Appointment
	Customer UserSummary `json:"customer"`
	Doctor   UserSummary `json:"doctor"`
}
