package scheduling

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type fixture struct {
	svc      *Service
	repo     *memAppointmentRepo
	doctors  *memDoctorRepo
	patients *memPatientRepo
	outbox   *memOutboxRepo
	doctor   *model.Doctor
	patient  *model.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newMemAppointmentRepo()
	doctors := newMemDoctorRepo()
	patients := newMemPatientRepo()
	outbox := newMemOutboxRepo()

	doctor := &model.Doctor{Name: "Dr. Patel", Email: "patel@example.com", Specialization: "Cardiology"}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	patient := &model.Patient{Name: "Asha Rao", Email: "asha@example.com"}
	require.NoError(t, patients.Create(context.Background(), patient))

	svc := NewService(repo, doctors, patients, outbox, NewSlotSet(nil), nil)
	return &fixture{
		svc:      svc,
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		outbox:   outbox,
		doctor:   doctor,
		patient:  patient,
	}
}

func (f *fixture) patientActor() model.Actor {
	return model.Actor{ID: f.patient.ID, Role: model.RolePatient}
}

func (f *fixture) doctorActor() model.Actor {
	return model.Actor{ID: f.doctor.ID, Role: model.RoleDoctor}
}

func adminActor() model.Actor {
	return model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
}

func (f *fixture) claim(t *testing.T, date, slot string) *model.Appointment {
	t.Helper()
	apt, err := f.svc.ClaimSlot(context.Background(), f.patientActor(), &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: date,
		Slot:            slot,
	})
	require.NoError(t, err)
	return apt
}

func TestClaimSlot(t *testing.T) {
	f := newFixture(t)

	apt := f.claim(t, "2026-09-15", "10:00")

	assert.Equal(t, f.doctor.ID, apt.DoctorID)
	assert.Equal(t, f.patient.ID, apt.PatientID)
	assert.Equal(t, "10:00", apt.Slot)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, model.DefaultReason, apt.Reason)
	assert.Equal(t, []string{model.EventAppointmentBooked}, f.outbox.eventTypes())
}

func TestClaimSlotConflict(t *testing.T) {
	f := newFixture(t)
	f.claim(t, "2026-09-15", "10:00")

	other := &model.Patient{Name: "Vikram Shah", Email: "vikram@example.com"}
	require.NoError(t, f.patients.Create(context.Background(), other))

	_, err := f.svc.ClaimSlot(context.Background(), model.Actor{ID: other.ID, Role: model.RolePatient}, &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: "2026-09-15",
		Slot:            "10:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotConflict))

	// A different slot on the same day is fine.
	f.claim(t, "2026-09-15", "10:30")
}

func TestClaimSlotValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClaimSlot(context.Background(), f.patientActor(), &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: "2026-09-15",
		Slot:            "10:15",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation),
		"unrecognized slot must be rejected before touching the store")

	_, err = f.svc.ClaimSlot(context.Background(), f.patientActor(), &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: "15-09-2026",
		Slot:            "10:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	_, err = f.svc.ClaimSlot(context.Background(), f.doctorActor(), &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: "2026-09-15",
		Slot:            "10:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden),
		"only patients book appointments")

	_, err = f.svc.ClaimSlot(context.Background(), f.patientActor(), &model.BookAppointmentRequest{
		DoctorID:        uuid.New().String(),
		AppointmentDate: "2026-09-15",
		Slot:            "10:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

// TestConcurrentClaims races many bookings for one tuple. Exactly one
// must win; every loser must see a slot conflict, never a second row.
func TestConcurrentClaims(t *testing.T) {
	const iterations = 100
	const racers = 8

	for i := 0; i < iterations; i++ {
		f := newFixture(t)

		patients := make([]*model.Patient, racers)
		for j := range patients {
			p := &model.Patient{Name: "Racer", Email: "racer@example.com"}
			require.NoError(t, f.patients.Create(context.Background(), p))
			patients[j] = p
		}

		var wins, conflicts atomic.Int64
		var wg sync.WaitGroup
		start := make(chan struct{})

		for j := 0; j < racers; j++ {
			wg.Add(1)
			go func(p *model.Patient) {
				defer wg.Done()
				<-start
				_, err := f.svc.ClaimSlot(context.Background(), model.Actor{ID: p.ID, Role: model.RolePatient}, &model.BookAppointmentRequest{
					DoctorID:        f.doctor.ID.String(),
					AppointmentDate: "2026-09-15",
					Slot:            "11:00",
				})
				switch {
				case err == nil:
					wins.Add(1)
				case apperrors.IsCode(err, apperrors.ErrSlotConflict):
					conflicts.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(patients[j])
		}

		close(start)
		wg.Wait()

		require.Equal(t, int64(1), wins.Load(), "iteration %d: exactly one claim must win", i)
		require.Equal(t, int64(racers-1), conflicts.Load(), "iteration %d", i)

		active, err := f.repo.ListForDoctorDay(context.Background(), f.doctor.ID, mustParseDate(t, "2026-09-15"))
		require.NoError(t, err)
		require.Len(t, active, 1, "iteration %d: one active row per tuple", i)
	}
}

func TestMoveSlot(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	moved, err := f.svc.MoveSlot(context.Background(), f.doctorActor(), apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-09-16",
		Slot: "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "14:00", moved.Slot)
	assert.Equal(t, model.AppointmentStatusScheduled, moved.Status)

	// The vacated tuple is claimable again.
	f.claim(t, "2026-09-15", "10:00")

	// The moved-to tuple is now held: a fresh claim on it must lose.
	_, err = f.svc.ClaimSlot(context.Background(), f.patientActor(), &model.BookAppointmentRequest{
		DoctorID:        f.doctor.ID.String(),
		AppointmentDate: "2026-09-16",
		Slot:            "14:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotConflict))

	assert.Contains(t, f.outbox.eventTypes(), model.EventAppointmentRescheduled)
}

func TestMoveSlotConflict(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")
	f.claim(t, "2026-09-16", "14:00")

	_, err := f.svc.MoveSlot(context.Background(), f.doctorActor(), apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-09-16",
		Slot: "14:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotConflict))

	// The failed move must not have disturbed the original claim.
	got, err := f.svc.GetAppointment(context.Background(), f.doctorActor(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.Slot)
}

func TestMoveSlotOwnership(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	otherDoctor := model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	_, err := f.svc.MoveSlot(context.Background(), otherDoctor, apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-09-16",
		Slot: "14:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound),
		"a foreign doctor must not learn the appointment exists")

	// Admins may move anyone's appointment.
	_, err = f.svc.MoveSlot(context.Background(), adminActor(), apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-09-16",
		Slot: "14:00",
	})
	assert.NoError(t, err)

	_, err = f.svc.MoveSlot(context.Background(), f.patientActor(), apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-09-17",
		Slot: "14:00",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestReleaseSlotFreesTuple(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	released, err := f.svc.ReleaseSlot(context.Background(), f.patientActor(), apt.ID, "can't make it")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, released.Status)
	require.NotNil(t, released.CancelReason)
	assert.Equal(t, "can't make it", *released.CancelReason)

	// The tuple is free again immediately.
	f.claim(t, "2026-09-15", "10:00")

	assert.Contains(t, f.outbox.eventTypes(), model.EventAppointmentCancelled)
}

func TestReleaseSlotAlreadyTerminal(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	_, err := f.svc.ReleaseSlot(context.Background(), f.patientActor(), apt.ID, "")
	require.NoError(t, err)

	_, err = f.svc.ReleaseSlot(context.Background(), f.patientActor(), apt.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyTerminal),
		"cancelling twice is an error, not a no-op")

	apt2 := f.claim(t, "2026-09-16", "10:00")
	_, err = f.svc.CloseOut(context.Background(), f.doctorActor(), apt2.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.ReleaseSlot(context.Background(), f.patientActor(), apt2.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyTerminal))
}

// TestGuardedUpdateAfterTerminal drives the repository the way a caller
// losing the read-then-update race would: the appointment turns terminal
// after the caller's read, so the guarded update matches no row. The
// repository must report the terminal state, not a missing appointment.
func TestGuardedUpdateAfterTerminal(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	_, err := f.repo.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled, nil)
	require.NoError(t, err)

	_, err = f.repo.UpdateSlot(context.Background(), apt.ID, mustParseDate(t, "2026-09-16"), "14:00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyTerminal))

	_, err = f.repo.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCompleted, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyTerminal))

	// A genuinely unknown id is still a missing appointment.
	_, err = f.repo.UpdateSlot(context.Background(), uuid.New(), mustParseDate(t, "2026-09-16"), "14:00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestReleaseSlotOwnership(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	stranger := model.Actor{ID: uuid.New(), Role: model.RolePatient}
	_, err := f.svc.ReleaseSlot(context.Background(), stranger, apt.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	otherDoctor := model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	_, err = f.svc.ReleaseSlot(context.Background(), otherDoctor, apt.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestCloseOut(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	_, err := f.svc.CloseOut(context.Background(), f.doctorActor(), apt.ID, model.AppointmentStatusCancelled)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation),
		"close-out only accepts completed or no_show")

	closed, err := f.svc.CloseOut(context.Background(), f.doctorActor(), apt.ID, model.AppointmentStatusNoShow)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, closed.Status)

	// Close-out frees the slot like a cancellation does.
	f.claim(t, "2026-09-15", "10:00")
}

func TestGetAppointmentScoping(t *testing.T) {
	f := newFixture(t)
	apt := f.claim(t, "2026-09-15", "10:00")

	got, err := f.svc.GetAppointment(context.Background(), f.patientActor(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)

	stranger := model.Actor{ID: uuid.New(), Role: model.RolePatient}
	_, err = f.svc.GetAppointment(context.Background(), stranger, apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	_, err = f.svc.GetAppointment(context.Background(), adminActor(), apt.ID)
	assert.NoError(t, err)
}

func TestListAppointmentsScoping(t *testing.T) {
	f := newFixture(t)
	f.claim(t, "2026-09-15", "10:00")
	f.claim(t, "2026-09-15", "11:00")

	mine, err := f.svc.ListAppointments(context.Background(), f.patientActor(), nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	stranger := model.Actor{ID: uuid.New(), Role: model.RolePatient}
	none, err := f.svc.ListAppointments(context.Background(), stranger, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	// A doctor filter from a patient is overridden by their own scope.
	scoped, err := f.svc.ListAppointments(context.Background(), stranger, &model.AppointmentFilters{DoctorID: f.doctor.ID})
	require.NoError(t, err)
	assert.Empty(t, scoped)
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)

	available, err := f.svc.AvailableSlots(context.Background(), f.doctor.ID, "2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, DefaultSlots, available)

	apt := f.claim(t, "2026-09-15", "10:00")

	available, err = f.svc.AvailableSlots(context.Background(), f.doctor.ID, "2026-09-15")
	require.NoError(t, err)
	assert.NotContains(t, available, "10:00")
	assert.Len(t, available, len(DefaultSlots)-1)

	_, err = f.svc.ReleaseSlot(context.Background(), f.patientActor(), apt.ID, "")
	require.NoError(t, err)

	available, err = f.svc.AvailableSlots(context.Background(), f.doctor.ID, "2026-09-15")
	require.NoError(t, err)
	assert.Contains(t, available, "10:00")
}

func mustParseDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := parseDate(value)
	require.NoError(t, err)
	return d
}
