// Package memstore is an in-process implementation of the store contracts,
// used for local runs without MongoDB and by tests. It enforces the same
// unique constraints as the Mongo indexes.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
)

type Users struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

func NewUsers() *Users {
	return &Users{
		byID:    make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return fmt.Errorf("%w: email %s", store.ErrDuplicate, u.Email)
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Users) ByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, id.Hex())
	}
	return &u, nil
}

func (s *Users) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: email %s", store.ErrNotFound, email)
	}
	u := s.byID[id]
	return &u, nil
}

func (s *Users) ByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (s *Users) Find(_ context.Context, f store.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0)
	for _, u := range s.byID {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Approved != nil && u.IsApproved != *f.Approved {
			continue
		}
		u.Password = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.Hex() < users[j].ID.Hex()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Users) Patch(_ context.Context, id primitive.ObjectID, p store.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, id.Hex())
	}
	if p.Email != nil {
		if owner, taken := s.byEmail[*p.Email]; taken && owner != id {
			return nil, fmt.Errorf("%w: email %s", store.ErrDuplicate, *p.Email)
		}
		delete(s.byEmail, u.Email)
		u.Email = *p.Email
	}
	setString(&u.Name, p.Name)
	setString(&u.Password, p.Password)
	setString(&u.Specialty, p.Specialty)
	setString(&u.Location, p.Location)
	if p.IsApproved != nil {
		u.IsApproved = *p.IsApproved
	}
	u.UpdatedAt = p.UpdatedAt
	s.byID[id] = u
	s.byEmail[u.Email] = id
	return &u, nil
}

func setString(dst, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: user %s", store.ErrNotFound, id.Hex())
	}
	delete(s.byID, id)
	delete(s.byEmail, u.Email)
	return nil
}

type Appointments struct {
	mu     sync.RWMutex
	byID   map[primitive.ObjectID]models.Appointment
	bySlot map[string]primitive.ObjectID
}

func NewAppointments() *Appointments {
	return &Appointments{
		byID:   make(map[primitive.ObjectID]models.Appointment),
		bySlot: make(map[string]primitive.ObjectID),
	}
}

func (s *Appointments) Create(_ context.Context, a *models.Appointment) error {
	a.SyncSlot()
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.SlotKey != "" {
		if _, taken := s.bySlot[a.SlotKey]; taken {
			return fmt.Errorf("%w: slot %s", store.ErrDuplicate, a.SlotKey)
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.put(*a)
	return nil
}

func (s *Appointments) ByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", store.ErrNotFound, id.Hex())
	}
	return clone(a), nil
}

func (s *Appointments) ActiveInSlot(_ context.Context, slotKey string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySlot[slotKey]
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", store.ErrNotFound, slotKey)
	}
	return clone(s.byID[id]), nil
}

func (s *Appointments) Find(_ context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0)
	for _, a := range s.byID {
		switch {
		case !f.CustomerID.IsZero() && a.CustomerID != f.CustomerID:
			continue
		case !f.DoctorID.IsZero() && a.DoctorID != f.DoctorID:
			continue
		case f.Status != "" && a.Status != f.Status:
			continue
		case !f.From.IsZero() && a.Date.Before(f.From):
			continue
		case !f.To.IsZero() && a.Date.After(f.To):
			continue
		}
		out = append(out, *clone(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Appointments) Patch(_ context.Context, id primitive.ObjectID, p store.AppointmentPatch) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", store.ErrNotFound, id.Hex())
	}
	if p.IfStatus != "" && prev.Status != p.IfStatus {
		return nil, fmt.Errorf("%w: appointment %s is no longer %s", store.ErrStale, id.Hex(), p.IfStatus)
	}

	a := *clone(prev)
	if p.Status != nil {
		a.Status = *p.Status
	}
	setString(&a.DoctorNotes, p.DoctorNotes)
	setString(&a.VisitSummary, p.VisitSummary)
	a.UpdatedAt = p.UpdatedAt
	a.SyncSlot()
	if a.SlotKey != "" {
		if owner, taken := s.bySlot[a.SlotKey]; taken && owner != id {
			return nil, fmt.Errorf("%w: slot %s", store.ErrDuplicate, a.SlotKey)
		}
	}
	if prev.SlotKey != "" {
		delete(s.bySlot, prev.SlotKey)
	}
	s.put(a)
	return clone(a), nil
}

// put must be called with mu held.
func (s *Appointments) put(a models.Appointment) {
	a.Documents = cloneDocuments(a.Documents)
	s.byID[a.ID] = a
	if a.SlotKey != "" {
		s.bySlot[a.SlotKey] = a.ID
	}
}

func clone(a models.Appointment) *models.Appointment {
	a.Documents = cloneDocuments(a.Documents)
	return &a
}

// cloneDocuments never returns nil so listings render [] rather than null.
func cloneDocuments(docs []string) []string {
	out := make([]string, len(docs))
	copy(out, docs)
	return out
}
