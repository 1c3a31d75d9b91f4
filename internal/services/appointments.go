package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/report"
	"github.com/harentsoaR/docspot-api/internal/store"
)

const (
	msgSlotTaken           = "This appointment slot is already taken."
	msgAppointmentNotFound = "Appointment not found"
)

type BookInput struct {
	DoctorID  string
	Date      string
	Time      string
	Documents []string
}

// ListFilter narrows ListMine; zero fields are ignored.
type ListFilter struct {
	Status models.AppointmentStatus
	From   time.Time
	To     time.Time
}

// UpdateInput fields left nil keep their current value.
type UpdateInput struct {
	Status       *models.AppointmentStatus
	DoctorNotes  *string
	VisitSummary *string
}

type AppointmentService struct {
	appointments store.Appointments
	users        store.Users
	notify       notifier
	log          *zap.Logger
	now          Clock
}

func NewAppointmentService(appointments store.Appointments, users store.Users, pub events.Publisher, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		users:        users,
		notify:       notifier{pub: pub, log: log},
		log:          log,
		now:          time.Now,
	}
}

// Book creates a pending appointment. The slot pre-check gives the common
// case a clear answer; the store's unique slot constraint settles races.
func (s *AppointmentService) Book(ctx context.Context, customer *models.User, in BookInput) (_ *models.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.Book")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	in.Time = strings.TrimSpace(in.Time)
	if strings.TrimSpace(in.DoctorID) == "" || strings.TrimSpace(in.Date) == "" || in.Time == "" {
		return nil, apperr.InvalidRequest("Please provide doctorId, date and time")
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, apperr.InvalidRequest("Invalid date, use YYYY-MM-DD")
	}
	doctorID, err := parseID(in.DoctorID, "Doctor not found.")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("doctor.id", doctorID.Hex()), attribute.String("slot.date", date.Format(models.DateLayout)))

	doctor, err := s.users.ByID(ctx, doctorID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Doctor not found.")
		}
		return nil, apperr.Internal("Failed to load doctor", err)
	}
	if !doctor.IsApprovedDoctor() {
		return nil, apperr.InvalidRequest("Selected doctor not found or not approved.")
	}

	slot := models.SlotKey(doctorID, date, in.Time)
	if _, err := s.appointments.ActiveInSlot(ctx, slot); err == nil {
		s.log.Info("slot conflict", zap.String("slot", slot))
		return nil, apperr.Conflict(msgSlotTaken)
	} else if !isNotFound(err) {
		return nil, apperr.Internal("Failed to check slot", err)
	}

	documents := make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		if d = strings.TrimSpace(d); d != "" {
			documents = append(documents, d)
		}
	}
	now := s.now().UTC()
	apt := &models.Appointment{
		ID:         primitive.NewObjectID(),
		CustomerID: customer.ID,
		DoctorID:   doctorID,
		Date:       date,
		Time:       in.Time,
		Status:     models.StatusPending,
		Documents:  documents,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if isDuplicate(err) {
			s.log.Info("slot conflict on insert", zap.String("slot", slot))
			return nil, apperr.Conflict(msgSlotTaken)
		}
		return nil, apperr.Internal("Failed to create appointment", err)
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", apt.ID.Hex()),
		zap.String("customer_id", customer.ID.Hex()),
		zap.String("doctor_id", doctorID.Hex()))
	s.notify.publish(ctx, events.RKAppointmentBooked, appointmentEvent(now, apt, customer, doctor))
	return apt, nil
}

// ListMine returns the caller's appointments with the counterpart's public
// fields attached. Accounts that no longer exist are reported by id only.
func (s *AppointmentService) ListMine(ctx context.Context, acct *models.User, f ListFilter) ([]models.AppointmentView, error) {
	filter := store.AppointmentFilter{Status: f.Status, From: f.From, To: f.To}
	switch acct.Role {
	case models.RoleCustomer:
		filter.CustomerID = acct.ID
	case models.RoleDoctor:
		filter.DoctorID = acct.ID
	default:
		return nil, apperr.Forbidden("Not authorized to view appointments.")
	}

	appointments, err := s.appointments.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve appointments", err)
	}

	counterpart := make([]primitive.ObjectID, 0, len(appointments))
	for _, a := range appointments {
		if acct.Role == models.RoleCustomer {
			counterpart = append(counterpart, a.DoctorID)
		} else {
			counterpart = append(counterpart, a.CustomerID)
		}
	}
	others, err := s.users.ByIDs(ctx, counterpart)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve appointments", err)
	}

	views := make([]models.AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		v := models.AppointmentView{
			Appointment: a,
			Customer:    models.UserSummary{ID: a.CustomerID},
			Doctor:      models.UserSummary{ID: a.DoctorID},
		}
		if acct.Role == models.RoleCustomer {
			if d, ok := others[a.DoctorID]; ok {
				v.Doctor = d.DoctorSummary()
			}
		} else if c, ok := others[a.CustomerID]; ok {
			v.Customer = c.CustomerSummary()
		}
		views = append(views, v)
	}
	return views, nil
}

// UpdateStatus lets the owning doctor change status, notes and summary.
// Completed and cancelled appointments keep their status.
func (s *AppointmentService) UpdateStatus(ctx context.Context, doctor *models.User, idHex string, in UpdateInput) (_ *models.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.UpdateStatus")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	apt, err := s.load(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if apt.DoctorID != doctor.ID {
		return nil, apperr.Unauthorized("Not authorized to update this appointment")
	}

	now := s.now().UTC()
	patch := store.AppointmentPatch{
		DoctorNotes:  in.DoctorNotes,
		VisitSummary: in.VisitSummary,
		UpdatedAt:    now,
	}
	if in.Status != nil && *in.Status != "" && *in.Status != apt.Status {
		next := *in.Status
		if !next.Valid() {
			return nil, apperr.InvalidRequest("Invalid status " + string(next))
		}
		if apt.Status.Terminal() {
			return nil, apperr.InvalidRequest("Cannot change the status of a " + string(apt.Status) + " appointment")
		}
		patch.Status = &next
		patch.IfStatus = apt.Status
	}

	apt, err = s.appointments.Patch(ctx, apt.ID, patch)
	if err != nil {
		switch {
		case isDuplicate(err):
			return nil, apperr.Conflict(msgSlotTaken)
		case isStale(err):
			return nil, apperr.Conflict("Appointment was changed meanwhile, please reload and try again.")
		case isNotFound(err):
			return nil, apperr.NotFound(msgAppointmentNotFound)
		}
		return nil, apperr.Internal("Failed to update appointment", err)
	}
	s.log.Info("appointment updated",
		zap.String("appointment_id", apt.ID.Hex()),
		zap.String("status", string(apt.Status)))

	customer := s.lookup(ctx, apt.CustomerID)
	s.notify.publish(ctx, events.RKAppointmentUpdated, appointmentEvent(now, apt, customer, doctor))
	return apt, nil
}

// Cancel forces the status to cancelled whatever it was before.
func (s *AppointmentService) Cancel(ctx context.Context, customer *models.User, idHex string) (_ *models.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.Cancel")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	apt, err := s.load(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if apt.CustomerID != customer.ID {
		return nil, apperr.Unauthorized("Not authorized to cancel this appointment")
	}

	cancelled := models.StatusCancelled
	now := s.now().UTC()
	apt, err = s.appointments.Patch(ctx, apt.ID, store.AppointmentPatch{Status: &cancelled, UpdatedAt: now})
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgAppointmentNotFound)
		}
		return nil, apperr.Internal("Failed to cancel appointment", err)
	}
	s.log.Info("appointment cancelled", zap.String("appointment_id", apt.ID.Hex()))

	doctor := s.lookup(ctx, apt.DoctorID)
	s.notify.publish(ctx, events.RKAppointmentCancelled, appointmentEvent(now, apt, customer, doctor))
	return apt, nil
}

// SummaryPDF renders the visit summary for either party of the appointment.
func (s *AppointmentService) SummaryPDF(ctx context.Context, acct *models.User, idHex string) ([]byte, error) {
	apt, err := s.load(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if apt.CustomerID != acct.ID && apt.DoctorID != acct.ID {
		return nil, apperr.Unauthorized("Not authorized to view this appointment")
	}

	doctor := models.UserSummary{ID: apt.DoctorID}
	if d := s.lookup(ctx, apt.DoctorID); d != nil {
		doctor = d.DoctorSummary()
	}
	customer := models.UserSummary{ID: apt.CustomerID}
	if c := s.lookup(ctx, apt.CustomerID); c != nil {
		customer = c.CustomerSummary()
	}
	out, err := report.VisitSummary(apt, doctor, customer, s.now())
	if err != nil {
		return nil, apperr.Internal("Failed to render visit summary", err)
	}
	return out, nil
}

func (s *AppointmentService) load(ctx context.Context, idHex string) (*models.Appointment, error) {
	id, err := parseID(idHex, msgAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	apt, err := s.appointments.ByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgAppointmentNotFound)
		}
		return nil, apperr.Internal("Failed to load appointment", err)
	}
	return apt, nil
}

// lookup returns nil for accounts that are gone or cannot be read.
func (s *AppointmentService) lookup(ctx context.Context, id primitive.ObjectID) *models.User {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			s.log.Warn("account lookup failed", zap.String("user_id", id.Hex()), zap.Error(err))
		}
		return nil
	}
	return u
}
