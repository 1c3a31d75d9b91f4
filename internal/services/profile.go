package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/cache"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
	"github.com/harentsoaR/docspot-api/internal/utils"
)

// ProfileInput fields left nil or empty keep their current value.
type ProfileInput struct {
	Name      *string
	Email     *string
	Password  *string
	Specialty *string
	Location  *string
}

type ProfileService struct {
	users  store.Users
	hasher utils.PasswordHasher
	cache  cache.Doctors
	now    Clock
}

func NewProfileService(users store.Users, hasher utils.PasswordHasher, c cache.Doctors) *ProfileService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ProfileService{users: users, hasher: hasher, cache: c, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, acct *models.User) (*models.User, error) {
	u, err := s.users.ByID(ctx, acct.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load profile", err)
	}
	u.Password = ""
	return u, nil
}

func (s *ProfileService) Update(ctx context.Context, acct *models.User, in ProfileInput) (*models.User, error) {
	u, err := s.users.ByID(ctx, acct.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load profile", err)
	}

	patch := store.UserPatch{UpdatedAt: s.now().UTC()}
	if v := trimmed(in.Name); v != "" {
		patch.Name = &v
	}
	if v := NormalizeEmail(deref(in.Email)); v != "" && v != u.Email {
		if _, err := mail.ParseAddress(v); err != nil {
			return nil, apperr.InvalidRequest("Please provide a valid email address")
		}
		patch.Email = &v
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < minPasswordLength {
			return nil, apperr.InvalidRequest("Password must be at least 6 characters")
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Internal("Failed to hash password", err)
		}
		patch.Password = &hash
	}
	if u.IsDoctor() {
		if v := trimmed(in.Specialty); v != "" {
			patch.Specialty = &v
		}
		if v := trimmed(in.Location); v != "" {
			patch.Location = &v
		}
	}

	u, err = s.users.Patch(ctx, u.ID, patch)
	if err != nil {
		switch {
		case isDuplicate(err):
			return nil, apperr.Conflict("User with this email already exists")
		case isNotFound(err):
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to update user profile", err)
	}
	if u.IsDoctor() {
		s.cache.Invalidate(ctx)
	}
	u.Password = ""
	return u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s *string) string { return strings.TrimSpace(deref(s)) }
