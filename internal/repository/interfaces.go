package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type (
	// AppointmentRepository is the slot ledger's persistence boundary. The
	// implementation must guarantee that at most one scheduled appointment
	// exists per (doctor, date, slot) tuple even under concurrent writers:
	// Create and UpdateSlot return a SlotConflict error when the target
	// tuple is already held.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// UpdateSlot moves a scheduled appointment to a new (date, slot).
		// Returns NotFound if the id is unknown, AlreadyTerminal if the
		// appointment exists but is no longer scheduled.
		UpdateSlot(ctx context.Context, id uuid.UUID, date time.Time, slot string) (*model.Appointment, error)
		// UpdateStatus transitions a scheduled appointment to the given
		// status. Returns NotFound if the id is unknown, AlreadyTerminal
		// if the appointment exists but is no longer scheduled.
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	BillRepository interface {
		Create(ctx context.Context, bill *model.Bill) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Bill, error)
		UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		List(ctx context.Context, filters *model.MedicalRecordFilters) ([]*model.MedicalRecord, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
