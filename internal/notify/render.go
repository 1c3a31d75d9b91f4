package notify

import (
	"errors"
	"fmt"

	"github.com/harentsoaR/docspot-api/internal/events"
)

// ErrMalformed marks a payload that can never be decoded. Such deliveries are
// dropped instead of requeued.
var ErrMalformed = errors.New("malformed event payload")

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// Render builds the messages for one event. known is false for routing keys
// this package has no template for.
func Render(key string, body []byte) (msgs []Message, known bool, err error) {
	switch key {
	case events.RKAppointmentBooked:
		ev, err := events.Decode[events.Appointment](body)
		if err != nil {
			return nil, true, malformed(err)
		}
		return []Message{
			{
				To:      ev.Doctor.Email,
				Subject: "New appointment request",
				Body: fmt.Sprintf("Hello %s,\n\n%s requested an appointment on %s at %s.\nPlease confirm it in DocSpot.",
					ev.Doctor.Name, ev.Customer.Name, ev.Date, ev.Time),
			},
			{
				To:      ev.Customer.Email,
				Subject: "Appointment request received",
				Body: fmt.Sprintf("Hello %s,\n\nYour request for %s on %s at %s was sent. Waiting for doctor confirmation.",
					ev.Customer.Name, ev.Doctor.Name, ev.Date, ev.Time),
			},
		}, true, nil

	case events.RKAppointmentUpdated:
		ev, err := events.Decode[events.Appointment](body)
		if err != nil {
			return nil, true, malformed(err)
		}
		text := fmt.Sprintf("Hello %s,\n\nYour appointment with %s on %s at %s is now %s.",
			ev.Customer.Name, ev.Doctor.Name, ev.Date, ev.Time, ev.Status)
		if ev.VisitSummary != "" {
			text += "\n\nVisit summary:\n" + ev.VisitSummary
		}
		return []Message{{To: ev.Customer.Email, Subject: "Appointment " + ev.Status, Body: text}}, true, nil

	case events.RKAppointmentCancelled:
		ev, err := events.Decode[events.Appointment](body)
		if err != nil {
			return nil, true, malformed(err)
		}
		return []Message{{
			To:      ev.Doctor.Email,
			Subject: "Appointment cancelled",
			Body: fmt.Sprintf("Hello %s,\n\n%s cancelled the appointment on %s at %s.",
				ev.Doctor.Name, ev.Customer.Name, ev.Date, ev.Time),
		}}, true, nil

	case events.RKDoctorApproved:
		ev, err := events.Decode[events.Doctor](body)
		if err != nil {
			return nil, true, malformed(err)
		}
		return []Message{{
			To:      ev.Doctor.Email,
			Subject: "Your DocSpot account is approved",
			Body:    fmt.Sprintf("Hello %s,\n\nAn administrator approved your account. You can now sign in and receive bookings.", ev.Doctor.Name),
		}}, true, nil

	case events.RKDoctorRejected:
		ev, err := events.Decode[events.Doctor](body)
		if err != nil {
			return nil, true, malformed(err)
		}
		return []Message{{
			To:      ev.Doctor.Email,
			Subject: "Your DocSpot registration was declined",
			Body:    fmt.Sprintf("Hello %s,\n\nAn administrator declined your registration and the account was removed.", ev.Doctor.Name),
		}}, true, nil
	}
	return nil, false, nil
}
