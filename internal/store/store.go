// Package store declares the persistence contracts for accounts and appointments.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/docspot-api/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned by a conditional write whose precondition no
	// longer holds.
	ErrStale = errors.New("stale write")
)

// UserFilter selects accounts; nil fields are ignored.
type UserFilter struct {
	Role     *models.Role
	Approved *bool
}

// UserPatch lists the account fields to change; nil fields keep their
// stored value.
type UserPatch struct {
	Name       *string
	Email      *string
	Password   *string
	Specialty  *string
	Location   *string
	IsApproved *bool
	UpdatedAt  time.Time
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	Find(ctx context.Context, f UserFilter) ([]models.User, error)
	// Patch writes only the fields set in p and returns the stored account.
	Patch(ctx context.Context, id primitive.ObjectID, p UserPatch) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AppointmentFilter selects appointments; zero fields are ignored.
type AppointmentFilter struct {
	CustomerID primitive.ObjectID
	DoctorID   primitive.ObjectID
	Status     models.AppointmentStatus
	From       time.Time
	To         time.Time
}

// AppointmentPatch lists the appointment fields to change; nil fields keep
// their stored value.
type AppointmentPatch struct {
	Status *models.AppointmentStatus
	// IfStatus makes the write conditional on the stored status. A mismatch
	// fails with ErrStale.
	IfStatus     models.AppointmentStatus
	DoctorNotes  *string
	VisitSummary *string
	UpdatedAt    time.Time
}

type Appointments interface {
	// Create fails with ErrDuplicate when the appointment is active and its
	// slot is already held by another active appointment.
	Create(ctx context.Context, a *models.Appointment) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	// ActiveInSlot returns the active appointment holding slotKey, or ErrNotFound.
	ActiveInSlot(ctx context.Context, slotKey string) (*models.Appointment, error)
	Find(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	// Patch writes only the fields set in p and returns the stored
	// appointment. A status change claims or releases the slot in the same
	// write, with the same ErrDuplicate rule as Create.
	Patch(ctx context.Context, id primitive.ObjectID, p AppointmentPatch) (*models.Appointment, error)
}

func RolePtr(r models.Role) *models.Role { return &r }

func BoolPtr(b bool) *bool { return &b }
