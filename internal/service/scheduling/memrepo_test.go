package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

// memAppointmentRepo emulates the store's conditional unique constraint:
// all mutations take one lock, and an active (doctor, date, slot) tuple
// can be held by at most one appointment.
type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	activeSlots  map[string]uuid.UUID
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		activeSlots:  make(map[string]uuid.UUID),
	}
}

func slotKey(doctorID uuid.UUID, date time.Time, slot string) string {
	return fmt.Sprintf("%s|%s|%s", doctorID, date.Format(model.DateFormat), slot)
}

func (r *memAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(apt.DoctorID, apt.AppointmentDate, apt.Slot)
	if _, held := r.activeSlots[key]; held {
		return apperrors.NewSlotConflict(nil)
	}

	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	stored := *apt
	r.appointments[apt.ID] = &stored
	r.activeSlots[key] = apt.ID
	return nil
}

func (r *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *memAppointmentRepo) UpdateSlot(_ context.Context, id uuid.UUID, date time.Time, slot string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	if apt.Status.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminal(fmt.Sprintf("appointment is already %s", apt.Status))
	}

	newKey := slotKey(apt.DoctorID, date, slot)
	if holder, held := r.activeSlots[newKey]; held && holder != id {
		return nil, apperrors.NewSlotConflict(nil)
	}

	delete(r.activeSlots, slotKey(apt.DoctorID, apt.AppointmentDate, apt.Slot))
	apt.AppointmentDate = date
	apt.Slot = slot
	apt.UpdatedAt = time.Now()
	r.activeSlots[newKey] = id

	copied := *apt
	return &copied, nil
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	if apt.Status.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminal(fmt.Sprintf("appointment is already %s", apt.Status))
	}

	delete(r.activeSlots, slotKey(apt.DoctorID, apt.AppointmentDate, apt.Slot))
	apt.Status = status
	apt.CancelReason = cancelReason
	apt.UpdatedAt = time.Now()

	copied := *apt
	return &copied, nil
}

func (r *memAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Appointment
	for _, apt := range r.appointments {
		if filters.DoctorID != uuid.Nil && apt.DoctorID != filters.DoctorID {
			continue
		}
		if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		copied := *apt
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memAppointmentRepo) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID &&
			apt.AppointmentDate.Equal(date) &&
			apt.Status == model.AppointmentStatusScheduled {
			copied := *apt
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*model.Doctor
}

func newMemDoctorRepo() *memDoctorRepo {
	return &memDoctorRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *memDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	copied := *d
	r.doctors[d.ID] = &copied
	return nil
}

func (r *memDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, apperrors.NewNotFound("doctor", nil)
	}
	copied := *d
	return &copied, nil
}

func (r *memDoctorRepo) List(_ context.Context, _ *model.DoctorFilters) ([]*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[d.ID]; !ok {
		return apperrors.NewNotFound("doctor", nil)
	}
	copied := *d
	r.doctors[d.ID] = &copied
	return nil
}

func (r *memDoctorRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.DoctorStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return apperrors.NewNotFound("doctor", nil)
	}
	d.Status = status
	return nil
}

type memPatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*model.Patient
}

func newMemPatientRepo() *memPatientRepo {
	return &memPatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *memPatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := *p
	r.patients[p.ID] = &copied
	return nil
}

func (r *memPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	copied := *p
	return &copied, nil
}

func (r *memPatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memPatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return apperrors.NewNotFound("patient", nil)
	}
	copied := *p
	r.patients[p.ID] = &copied
	return nil
}

type memOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{}
}

func (r *memOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *memOutboxRepo) GetPendingEventsWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range r.events {
		if e.Status == model.OutboxStatusPending {
			copied := *e
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			return nil
		}
	}
	return apperrors.NewNotFound("outbox event", nil)
}

func (r *memOutboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.OutboxEvent
	var purged int64
	for _, e := range r.events {
		if e.Status == model.OutboxStatusProcessed && e.CreatedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return purged, nil
}

func (r *memOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}
