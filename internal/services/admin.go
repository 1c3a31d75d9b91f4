package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/cache"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
)

// AdminService runs the doctor approval workflow.
type AdminService struct {
	users  store.Users
	cache  cache.Doctors
	notify notifier
	log    *zap.Logger
	now    Clock
}

func NewAdminService(users store.Users, c cache.Doctors, pub events.Publisher, log *zap.Logger) *AdminService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AdminService{users: users, cache: c, notify: notifier{pub: pub, log: log}, log: log, now: time.Now}
}

func (s *AdminService) ListPendingDoctors(ctx context.Context) ([]models.User, error) {
	doctors, err := s.users.Find(ctx, store.UserFilter{
		Role:     store.RolePtr(models.RoleDoctor),
		Approved: store.BoolPtr(false),
	})
	if err != nil {
		return nil, apperr.Internal("Failed to load pending doctors", err)
	}
	return doctors, nil
}

func (s *AdminService) loadDoctor(ctx context.Context, idHex string) (*models.User, error) {
	id, err := parseID(idHex, "Doctor not found")
	if err != nil {
		return nil, err
	}
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Doctor not found")
		}
		return nil, apperr.Internal("Failed to load doctor", err)
	}
	if !u.IsDoctor() {
		return nil, apperr.InvalidRequest("User is not a doctor profile")
	}
	return u, nil
}

// Approve is idempotent.
func (s *AdminService) Approve(ctx context.Context, idHex string) (*models.User, error) {
	doctor, err := s.loadDoctor(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if !doctor.IsApproved {
		doctor, err = s.users.Patch(ctx, doctor.ID, store.UserPatch{
			IsApproved: store.BoolPtr(true),
			UpdatedAt:  s.now().UTC(),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, apperr.NotFound("Doctor not found")
			}
			return nil, apperr.Internal("Failed to approve doctor", err)
		}
		s.cache.Invalidate(ctx)
		s.log.Info("doctor approved", zap.String("doctor_id", doctor.ID.Hex()))
		s.notify.publish(ctx, events.RKDoctorApproved, events.Doctor{
			EventID: events.NewID(), OccurredAt: s.now().UTC(), Doctor: party(doctor),
		})
	}
	doctor.Password = ""
	return doctor, nil
}

// Reject deletes the doctor account. Appointments that reference it are
// left in place.
func (s *AdminService) Reject(ctx context.Context, idHex string) (*models.User, error) {
	doctor, err := s.loadDoctor(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, doctor.ID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Doctor not found")
		}
		return nil, apperr.Internal("Failed to reject doctor", err)
	}
	s.cache.Invalidate(ctx)
	s.log.Info("doctor rejected", zap.String("doctor_id", doctor.ID.Hex()))
	s.notify.publish(ctx, events.RKDoctorRejected, events.Doctor{
		EventID: events.NewID(), OccurredAt: s.now().UTC(), Doctor: party(doctor),
	})
	doctor.Password = ""
	return doctor, nil
}
