package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
	"github.com/harentsoaR/docspot-api/internal/utils"
)

// slowAppointments calls between once, right after the next ByID, so a
// competing write lands between a service's load and its write.
type slowAppointments struct {
	store.Appointments
	between func()
}

func (s *slowAppointments) ByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	a, err := s.Appointments.ByID(ctx, id)
	if fn := s.between; fn != nil {
		s.between = nil
		fn()
	}
	return a, err
}

type slowUsers struct {
	store.Users
	between func()
}

func (s *slowUsers) ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.Users.ByID(ctx, id)
	if fn := s.between; fn != nil {
		s.between = nil
		fn()
	}
	return u, err
}

func TestDoctorNotesDoNotUndoCustomerCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	slow := &slowAppointments{Appointments: f.store}
	doctorSide := NewAppointmentService(slow, f.users, f.pub, zap.NewNop())
	slow.between = func() {
		_, err := f.appointments.Cancel(ctx, c, apt.ID.Hex())
		require.NoError(t, err)
	}

	notes := "bring results"
	updated, err := doctorSide.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{DoctorNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, "bring results", updated.DoctorNotes)

	other := f.customer(t, "o@x.com")
	_, err = f.appointments.Book(ctx, other, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	assert.NoError(t, err)
}

func TestStatusChangeRacingCancelConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	slow := &slowAppointments{Appointments: f.store}
	doctorSide := NewAppointmentService(slow, f.users, f.pub, zap.NewNop())
	slow.between = func() {
		_, err := f.appointments.Cancel(ctx, c, apt.ID.Hex())
		require.NoError(t, err)
	}

	scheduled := models.StatusScheduled
	_, err = doctorSide.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &scheduled})
	assertKind(t, err, apperr.KindConflict)

	stored, err := f.store.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Empty(t, stored.SlotKey)
}

func TestApproveKeepsConcurrentProfileEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, RegisterInput{Name: "Dr. D", Email: "d@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology", Location: "NY"})

	slow := &slowUsers{Users: f.users}
	admin := NewAdminService(slow, nil, f.pub, zap.NewNop())
	boston := "Boston"
	slow.between = func() {
		_, err := f.profile.Update(ctx, d, ProfileInput{Location: &boston})
		require.NoError(t, err)
	}

	approved, err := admin.Approve(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, "Boston", approved.Location)

	stored, err := f.users.ByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
	assert.Equal(t, "Boston", stored.Location)
}

func TestProfileEditKeepsConcurrentApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, RegisterInput{Name: "Dr. D", Email: "d@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology", Location: "NY"})

	slow := &slowUsers{Users: f.users}
	profile := NewProfileService(slow, utils.NewPasswordHasher(bcrypt.MinCost), nil)
	slow.between = func() {
		_, err := f.admin.Approve(ctx, d.ID.Hex())
		require.NoError(t, err)
	}

	name := "Dr. Dana"
	_, err := profile.Update(ctx, d, ProfileInput{Name: &name})
	require.NoError(t, err)

	stored, err := f.users.ByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
	assert.Equal(t, "Dr. Dana", stored.Name)
}
