package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const (
	availabilityCacheTTL     = 30 * time.Second
	availabilityCacheCleanup = 5 * time.Minute
)

// Service is the slot ledger: every mutation of an appointment's date, slot
// or status goes through it. The uniqueness of active (doctor, date, slot)
// claims is enforced by the repository's conditional unique constraint, not
// by a check-then-act sequence here, so two racing claims for the same tuple
// resolve to one success and one conflict.
type Service struct {
	repo     repository.AppointmentRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	outbox   repository.OutboxRepository
	slots    *SlotSet
	cache    *cache.Cache
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	outbox repository.OutboxRepository,
	slots *SlotSet,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		outbox:   outbox,
		slots:    slots,
		cache:    cache.New(availabilityCacheTTL, availabilityCacheCleanup),
		metrics:  m,
	}
}

// ClaimSlot books a new appointment for the acting patient. The insert races
// against concurrent claims for the same tuple; the loser surfaces a slot
// conflict from the store.
func (s *Service) ClaimSlot(ctx context.Context, actor model.Actor, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if !actor.IsPatient() {
		return nil, apperrors.NewForbidden("only patients can book appointments")
	}

	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	if err := s.slots.validate(req.Slot); err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid doctor ID", err)
	}

	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	if _, err := s.patients.Get(ctx, actor.ID); err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = model.DefaultReason
	}

	apt := &model.Appointment{
		DoctorID:        doctorID,
		PatientID:       actor.ID,
		AppointmentDate: date,
		Slot:            req.Slot,
		Reason:          reason,
		Status:          model.AppointmentStatusScheduled,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		if apperrors.IsCode(err, apperrors.ErrSlotConflict) && s.metrics != nil {
			s.metrics.SlotConflictsTotal.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SlotClaimsTotal.Inc()
	}
	s.invalidateAvailability(doctorID, date)
	s.publishEvent(ctx, model.EventAppointmentBooked, apt)

	return apt, nil
}

// MoveSlot reschedules an appointment to a new (date, slot). Only the owning
// doctor or an admin may move it; the new tuple is validated against the same
// constraint as a fresh claim, with the appointment's own row excluded by
// virtue of being the row updated.
func (s *Service) MoveSlot(ctx context.Context, actor model.Actor, appointmentID uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if !actor.IsDoctor() && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only doctors can reschedule appointments")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.slots.validate(req.Slot); err != nil {
		return nil, err
	}

	apt, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	// Ownership failures are indistinguishable from missing appointments
	// so a doctor cannot probe another doctor's calendar.
	if actor.IsDoctor() && apt.DoctorID != actor.ID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}

	if apt.Status.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminal(
			fmt.Sprintf("cannot reschedule a %s appointment", apt.Status))
	}

	oldDate := apt.AppointmentDate
	updated, err := s.repo.UpdateSlot(ctx, appointmentID, date, req.Slot)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrSlotConflict) && s.metrics != nil {
			s.metrics.SlotConflictsTotal.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SlotMovesTotal.Inc()
	}
	s.invalidateAvailability(updated.DoctorID, oldDate)
	s.invalidateAvailability(updated.DoctorID, date)
	s.publishEvent(ctx, model.EventAppointmentRescheduled, updated)

	return updated, nil
}

// ReleaseSlot cancels an appointment, immediately freeing its tuple for new
// claims. Cancelling an appointment already in a terminal state is an error,
// not a no-op.
func (s *Service) ReleaseSlot(ctx context.Context, actor model.Actor, appointmentID uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin():
	case actor.IsDoctor():
		if apt.DoctorID != actor.ID {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
	case actor.IsPatient():
		if apt.PatientID != actor.ID {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}

	if apt.Status.IsTerminal() {
		if apt.Status == model.AppointmentStatusCancelled {
			return nil, apperrors.NewAlreadyTerminal("appointment is already cancelled")
		}
		return nil, apperrors.NewAlreadyTerminal(
			fmt.Sprintf("cannot cancel a %s appointment", apt.Status))
	}

	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}

	updated, err := s.repo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusCancelled, cancelReason)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SlotReleasesTotal.Inc()
	}
	s.invalidateAvailability(updated.DoctorID, updated.AppointmentDate)
	s.publishEvent(ctx, model.EventAppointmentCancelled, updated)

	return updated, nil
}

// CloseOut administratively transitions a scheduled appointment to completed
// or no_show. The slot is freed the same way a cancellation frees it.
func (s *Service) CloseOut(ctx context.Context, actor model.Actor, appointmentID uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if status != model.AppointmentStatusCompleted && status != model.AppointmentStatusNoShow {
		return nil, apperrors.NewValidation("status must be completed or no_show", nil)
	}
	if !actor.IsDoctor() && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only doctors can close out appointments")
	}

	apt, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actor.IsDoctor() && apt.DoctorID != actor.ID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	if apt.Status.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminal(
			fmt.Sprintf("appointment is already %s", apt.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, appointmentID, status, nil)
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(updated.DoctorID, updated.AppointmentDate)
	return updated, nil
}

func (s *Service) GetAppointment(ctx context.Context, actor model.Actor, appointmentID uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if actor.IsDoctor() && apt.DoctorID != actor.ID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	if actor.IsPatient() && apt.PatientID != actor.ID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return apt, nil
}

// ListAppointments scopes the filter set to what the actor may see: patients
// their own bookings, doctors their own roster, admins everything.
func (s *Service) ListAppointments(ctx context.Context, actor model.Actor, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	switch {
	case actor.IsPatient():
		filters.PatientID = actor.ID
	case actor.IsDoctor():
		filters.DoctorID = actor.ID
	}

	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// AvailableSlots returns the slot labels still free for a doctor on a date.
// Results are cached briefly; writes invalidate the affected day. The list is
// advisory only: the authoritative check happens at claim time.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, dateStr string) ([]string, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	key := availabilityKey(doctorID, date)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]string), nil
	}

	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}

	appointments, err := s.repo.ListForDoctorDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(appointments))
	for _, apt := range appointments {
		taken[apt.Slot] = struct{}{}
	}

	available := make([]string, 0, len(s.slots.order))
	for _, slot := range s.slots.All() {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}

	s.cache.Set(key, available, cache.DefaultExpiration)
	return available, nil
}

func (s *Service) invalidateAvailability(doctorID uuid.UUID, date time.Time) {
	s.cache.Delete(availabilityKey(doctorID, date))
}

func availabilityKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("availability:%s:%s", doctorID, date.Format(model.DateFormat))
}

// publishEvent writes an appointment lifecycle event to the outbox. The
// appointment mutation has already committed at this point, so a failed
// outbox write is logged rather than propagated.
func (s *Service) publishEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(apt)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		log.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to write outbox event")
	}
}
