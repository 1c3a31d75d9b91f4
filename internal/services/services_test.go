package services

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store/memstore"
	"github.com/harentsoaR/docspot-api/internal/utils"
)

type recordedEvent struct {
	Key     string
	Payload []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Key: key, Payload: b})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Key)
	}
	return out
}

type fixture struct {
	auth         *AuthService
	doctors      *DoctorService
	appointments *AppointmentService
	admin        *AdminService
	profile      *ProfileService
	pub          *recordingPublisher
	users        *memstore.Users
	store        *memstore.Appointments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memstore.NewUsers()
	appointments := memstore.NewAppointments()
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	tokens := utils.NewTokenManager("test-secret", 30*24*time.Hour)
	pub := &recordingPublisher{}
	log := zap.NewNop()
	return &fixture{
		auth:         NewAuthService(users, hasher, tokens, log),
		doctors:      NewDoctorService(users, nil),
		appointments: NewAppointmentService(appointments, users, pub, log),
		admin:        NewAdminService(users, nil, pub, log),
		profile:      NewProfileService(users, hasher, nil),
		pub:          pub,
		users:        users,
		store:        appointments,
	}
}

func (f *fixture) register(t *testing.T, in RegisterInput) *models.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), in)
	require.NoError(t, err)
	u := res.User
	return &u
}

func (f *fixture) customer(t *testing.T, email string) *models.User {
	return f.register(t, RegisterInput{Name: "Carol", Email: email, Password: "secret1", Role: models.RoleCustomer})
}

func (f *fixture) approvedDoctor(t *testing.T, email string) *models.User {
	t.Helper()
	d := f.register(t, RegisterInput{Name: "Dr. D", Email: email, Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology", Location: "NY"})
	approved, err := f.admin.Approve(context.Background(), d.ID.Hex())
	require.NoError(t, err)
	return approved
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), err.Error())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, RegisterInput{Name: "B", Email: " A@X.com ", Password: "secret2"})
	assertKind(t, err, apperr.KindConflict)
}

func TestRegisterApprovalDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.auth.Register(ctx, RegisterInput{Name: "C", Email: "c@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, c.User.Role)
	assert.True(t, c.User.IsApproved)
	assert.NotEmpty(t, c.Token)
	assert.Empty(t, c.User.Specialty)

	a, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "admin@x.com", Password: "secret1", Role: models.RoleAdmin, Specialty: "ignored"})
	require.NoError(t, err)
	assert.True(t, a.User.IsApproved)
	assert.Empty(t, a.User.Specialty)

	d, err := f.auth.Register(ctx, RegisterInput{Name: "D", Email: "d@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology", Location: "NY"})
	require.NoError(t, err)
	assert.False(t, d.User.IsApproved)
	assert.Equal(t, "Cardiology", d.User.Specialty)
	assert.Contains(t, d.Message, "approval")
	assert.NotEqual(t, "secret1", d.User.Password)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "a@x.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@x.com", Password: "123"},
		{Name: "A", Email: "a@x.com", Password: "secret1", Role: "nurse"},
		{Name: "A", Email: "a@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology"},
	}
	for _, in := range cases {
		_, err := f.auth.Register(ctx, in)
		assertKind(t, err, apperr.KindInvalidRequest)
	}
}

func TestLoginDoctorApprovalScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, RegisterInput{Name: "D", Email: "d@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "Cardiology", Location: "NY"})

	_, err := f.auth.Login(ctx, "d@x.com", "secret1")
	assertKind(t, err, apperr.KindUnauthorized)
	assert.Contains(t, err.Error(), "pending approval")

	_, err = f.admin.Approve(ctx, d.ID.Hex())
	require.NoError(t, err)

	res, err := f.auth.Login(ctx, "d@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleDoctor, res.User.Role)
}

func TestLoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customer(t, "c@x.com")

	_, unknown := f.auth.Login(ctx, "nobody@x.com", "secret1")
	_, wrong := f.auth.Login(ctx, "c@x.com", "nope")
	assertKind(t, unknown, apperr.KindUnauthorized)
	assertKind(t, wrong, apperr.KindUnauthorized)
	assert.Equal(t, unknown.Error(), wrong.Error())

	// A pending doctor with a wrong password gets the generic message.
	f.register(t, RegisterInput{Name: "D", Email: "d@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "S", Location: "L"})
	_, err := f.auth.Login(ctx, "d@x.com", "nope")
	assert.Equal(t, wrong.Error(), err.Error())
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Register(ctx, RegisterInput{Name: "C", Email: "c@x.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
	assert.Empty(t, u.Password)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestRejectedDoctorCannotLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d2 := f.register(t, RegisterInput{Name: "D2", Email: "d2@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "S", Location: "L"})

	_, err := f.admin.Reject(ctx, d2.ID.Hex())
	require.NoError(t, err)

	pending, err := f.admin.ListPendingDoctors(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.auth.Login(ctx, "d2@x.com", "secret1")
	assertKind(t, err, apperr.KindUnauthorized)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Contains(t, f.pub.keys(), events.RKDoctorRejected)
}

func TestAdminPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "c@x.com")

	_, err := f.admin.Approve(ctx, c.ID.Hex())
	assertKind(t, err, apperr.KindInvalidRequest)
	_, err = f.admin.Reject(ctx, c.ID.Hex())
	assertKind(t, err, apperr.KindInvalidRequest)
	_, err = f.admin.Approve(ctx, "64b7f0c2a1b2c3d4e5f60718")
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.admin.Reject(ctx, "not-an-id")
	assertKind(t, err, apperr.KindNotFound)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")

	again, err := f.admin.Approve(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.True(t, again.IsApproved)
	assert.Empty(t, again.Password)

	approvals := 0
	for _, k := range f.pub.keys() {
		if k == events.RKDoctorApproved {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func TestDoctorDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	approved := f.approvedDoctor(t, "d@x.com")
	pending := f.register(t, RegisterInput{Name: "P", Email: "p@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "S", Location: "L"})
	f.customer(t, "c@x.com")

	list, err := f.doctors.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, approved.ID, list[0].ID)
	assert.Empty(t, list[0].Password)

	_, err = f.doctors.GetApproved(ctx, pending.ID.Hex())
	assertKind(t, err, apperr.KindNotFound)
	got, err := f.doctors.GetApproved(ctx, approved.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "NY", got.Location)
}

func TestBookRejectsDoubleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c1 := f.customer(t, "c1@x.com")
	c2 := f.customer(t, "c2@x.com")

	apt, err := f.appointments.Book(ctx, c1, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, apt.Status)

	_, err = f.appointments.Book(ctx, c2, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	assertKind(t, err, apperr.KindConflict)
	assert.Contains(t, err.Error(), "already taken")

	_, err = f.appointments.Book(ctx, c2, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00am"})
	assertKind(t, err, apperr.KindConflict)

	_, err = f.appointments.Book(ctx, c2, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "11:00 AM"})
	require.NoError(t, err)
}

func TestBookFreesSlotAfterCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	in := BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"}

	apt, err := f.appointments.Book(ctx, c, in)
	require.NoError(t, err)
	_, err = f.appointments.Cancel(ctx, c, apt.ID.Hex())
	require.NoError(t, err)

	_, err = f.appointments.Book(ctx, c, in)
	require.NoError(t, err)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")

	var wg sync.WaitGroup
	results := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}
	assert.Equal(t, 1, ok)
}

func TestBookPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "c@x.com")
	pending := f.register(t, RegisterInput{Name: "P", Email: "p@x.com", Password: "secret1", Role: models.RoleDoctor, Specialty: "S", Location: "L"})

	_, err := f.appointments.Book(ctx, c, BookInput{DoctorID: "64b7f0c2a1b2c3d4e5f60718", Date: "2025-07-30", Time: "10:00 AM"})
	assertKind(t, err, apperr.KindNotFound)

	_, err = f.appointments.Book(ctx, c, BookInput{DoctorID: pending.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	assertKind(t, err, apperr.KindInvalidRequest)

	_, err = f.appointments.Book(ctx, c, BookInput{DoctorID: c.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	assertKind(t, err, apperr.KindInvalidRequest)

	_, err = f.appointments.Book(ctx, c, BookInput{DoctorID: pending.ID.Hex(), Date: "tomorrow", Time: "10:00 AM"})
	assertKind(t, err, apperr.KindInvalidRequest)

	_, err = f.appointments.Book(ctx, c, BookInput{DoctorID: pending.ID.Hex(), Date: "2025-07-30"})
	assertKind(t, err, apperr.KindInvalidRequest)
}

func TestCompletedVisitVisibleToCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")

	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM", Documents: []string{"ecg.pdf", " "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ecg.pdf"}, apt.Documents)

	completed := models.StatusCompleted
	summary := "ok"
	updated, err := f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &completed, VisitSummary: &summary})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	mine, err := f.appointments.ListMine(ctx, c, ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusCompleted, mine[0].Status)
	assert.Equal(t, "ok", mine[0].VisitSummary)
	assert.Equal(t, "Dr. D", mine[0].Doctor.Name)
	assert.Equal(t, "Cardiology", mine[0].Doctor.Specialty)
	assert.Empty(t, mine[0].Doctor.Email)

	theirs, err := f.appointments.ListMine(ctx, d, ListFilter{})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "c@x.com", theirs[0].Customer.Email)

	assert.Equal(t, []string{events.RKDoctorApproved, events.RKAppointmentBooked, events.RKAppointmentUpdated}, f.pub.keys())
}

func TestUpdateStatusKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	notes := "bring results"
	_, err = f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{DoctorNotes: &notes})
	require.NoError(t, err)

	scheduled := models.StatusScheduled
	updated, err := f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &scheduled})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, updated.Status)
	assert.Equal(t, "bring results", updated.DoctorNotes)
}

func TestUpdateStatusOwnershipAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	other := f.approvedDoctor(t, "other@x.com")
	c := f.customer(t, "c@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	scheduled := models.StatusScheduled
	_, err = f.appointments.UpdateStatus(ctx, other, apt.ID.Hex(), UpdateInput{Status: &scheduled})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = f.appointments.UpdateStatus(ctx, d, "64b7f0c2a1b2c3d4e5f60718", UpdateInput{Status: &scheduled})
	assertKind(t, err, apperr.KindNotFound)

	bogus := models.AppointmentStatus("done")
	_, err = f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &bogus})
	assertKind(t, err, apperr.KindInvalidRequest)
}

func TestTerminalStatusCannotChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)
	_, err = f.appointments.Cancel(ctx, c, apt.ID.Hex())
	require.NoError(t, err)

	scheduled := models.StatusScheduled
	_, err = f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &scheduled})
	assertKind(t, err, apperr.KindInvalidRequest)

	notes := "patient called to cancel"
	updated, err := f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{DoctorNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, notes, updated.DoctorNotes)
}

func TestReclaimingTakenSlotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	in := BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"}

	first, err := f.appointments.Book(ctx, c, in)
	require.NoError(t, err)
	rescheduled := models.StatusRescheduled
	_, err = f.appointments.UpdateStatus(ctx, d, first.ID.Hex(), UpdateInput{Status: &rescheduled})
	require.NoError(t, err)

	_, err = f.appointments.Book(ctx, c, in)
	require.NoError(t, err)

	scheduled := models.StatusScheduled
	_, err = f.appointments.UpdateStatus(ctx, d, first.ID.Hex(), UpdateInput{Status: &scheduled})
	assertKind(t, err, apperr.KindConflict)
}

func TestCancelForcesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	intruder := f.customer(t, "i@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	completed := models.StatusCompleted
	_, err = f.appointments.UpdateStatus(ctx, d, apt.ID.Hex(), UpdateInput{Status: &completed})
	require.NoError(t, err)

	_, err = f.appointments.Cancel(ctx, intruder, apt.ID.Hex())
	assertKind(t, err, apperr.KindUnauthorized)

	cancelled, err := f.appointments.Cancel(ctx, c, apt.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	_, err = f.appointments.Cancel(ctx, c, "nope")
	assertKind(t, err, apperr.KindNotFound)
}

func TestListMineRolesAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	admin := f.register(t, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1", Role: models.RoleAdmin})

	_, err := f.appointments.ListMine(ctx, admin, ListFilter{})
	assertKind(t, err, apperr.KindForbidden)

	empty, err := f.appointments.ListMine(ctx, c, ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, day := range []string{"2025-07-30", "2025-07-31"} {
		_, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: day, Time: "10:00 AM"})
		require.NoError(t, err)
	}
	from, _ := models.ParseDate("2025-07-31")
	filtered, err := f.appointments.ListMine(ctx, c, ListFilter{From: from})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	pending, err := f.appointments.ListMine(ctx, d, ListFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestListMineAfterDoctorRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	_, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	_, err = f.admin.Reject(ctx, d.ID.Hex())
	require.NoError(t, err)

	mine, err := f.appointments.ListMine(ctx, c, ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, d.ID, mine[0].Doctor.ID)
	assert.Empty(t, mine[0].Doctor.Name)
}

func TestSummaryPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")
	stranger := f.customer(t, "s@x.com")
	apt, err := f.appointments.Book(ctx, c, BookInput{DoctorID: d.ID.Hex(), Date: "2025-07-30", Time: "10:00 AM"})
	require.NoError(t, err)

	for _, who := range []*models.User{c, d} {
		out, err := f.appointments.SummaryPDF(ctx, who, apt.ID.Hex())
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	}
	_, err = f.appointments.SummaryPDF(ctx, stranger, apt.ID.Hex())
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approvedDoctor(t, "d@x.com")
	c := f.customer(t, "c@x.com")

	loc := "Boston"
	name := "Dr. Dee"
	updated, err := f.profile.Update(ctx, d, ProfileInput{Name: &name, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Boston", updated.Location)
	assert.Equal(t, "Cardiology", updated.Specialty)
	assert.Equal(t, "Dr. Dee", updated.Name)

	specialty := "Surgery"
	cust, err := f.profile.Update(ctx, c, ProfileInput{Specialty: &specialty})
	require.NoError(t, err)
	assert.Empty(t, cust.Specialty)

	taken := "d@x.com"
	_, err = f.profile.Update(ctx, c, ProfileInput{Email: &taken})
	assertKind(t, err, apperr.KindConflict)

	pw := "newsecret"
	_, err = f.profile.Update(ctx, c, ProfileInput{Password: &pw})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "c@x.com", "newsecret")
	require.NoError(t, err)

	got, err := f.profile.Get(ctx, c)
	require.NoError(t, err)
	assert.Empty(t, got.Password)
}
