package services

import (
	"context"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/cache"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
)

// DoctorService is the public directory of approved doctors.
type DoctorService struct {
	users store.Users
	cache cache.Doctors
}

func NewDoctorService(users store.Users, c cache.Doctors) *DoctorService {
	if c == nil {
		c = cache.Nop{}
	}
	return &DoctorService{users: users, cache: c}
}

func (s *DoctorService) ListApproved(ctx context.Context) ([]models.User, error) {
	if doctors, ok := s.cache.Approved(ctx); ok {
		return doctors, nil
	}
	doctors, err := s.users.Find(ctx, store.UserFilter{
		Role:     store.RolePtr(models.RoleDoctor),
		Approved: store.BoolPtr(true),
	})
	if err != nil {
		return nil, apperr.Internal("Failed to load doctors", err)
	}
	s.cache.SetApproved(ctx, doctors)
	return doctors, nil
}

func (s *DoctorService) GetApproved(ctx context.Context, idHex string) (*models.User, error) {
	const msg = "Doctor not found or not approved"
	id, err := parseID(idHex, msg)
	if err != nil {
		return nil, err
	}
	doctor, err := s.users.ByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msg)
		}
		return nil, apperr.Internal("Failed to load doctor", err)
	}
	if !doctor.IsApprovedDoctor() {
		return nil, apperr.NotFound(msg)
	}
	doctor.Password = ""
	return doctor, nil
}
