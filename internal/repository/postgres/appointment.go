package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

// activeSlotIndex is the partial unique index on
// (doctor_id, appointment_date, slot) WHERE status = 'scheduled'.
// It is what makes claim and move race-free: of two concurrent writers
// targeting the same tuple, the store commits exactly one and rejects the
// other with a unique violation, which we surface as a slot conflict.
const activeSlotIndex = "appointments_active_slot_idx"

func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == activeSlotIndex
	}
	return false
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, appointment_date, slot,
			reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.AppointmentDate,
		appointment.Slot,
		appointment.Reason,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isSlotConflict(err) {
			return apperrors.NewSlotConflict(err)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, appointment_date, slot,
			   reason, status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateSlot(ctx context.Context, id uuid.UUID, date time.Time, slot string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET appointment_date = $1, slot = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING id, doctor_id, patient_id, appointment_date, slot,
				  reason, status, cancel_reason, created_at, updated_at
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query,
		date, slot, time.Now(), id, model.AppointmentStatusScheduled,
	)
	if err != nil {
		if isSlotConflict(err) {
			return nil, apperrors.NewSlotConflict(err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, id)
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING id, doctor_id, patient_id, appointment_date, slot,
				  reason, status, cancel_reason, created_at, updated_at
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query,
		status, cancelReason, time.Now(), id, model.AppointmentStatusScheduled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, id)
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

// classifyMissedUpdate decides why an update guarded by
// status = 'scheduled' touched no rows: the appointment may not exist,
// or it may have reached a terminal status since the caller last read
// it. The distinction keeps a lost race reported as a state conflict
// rather than a missing resource.
func (r *appointmentRepository) classifyMissedUpdate(ctx context.Context, id uuid.UUID) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status.IsTerminal() {
		return apperrors.NewAlreadyTerminal(fmt.Sprintf("appointment is already %s", existing.Status))
	}
	return apperrors.NewNotFound("appointment", nil)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, appointment_date, slot,
			   reason, status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND appointment_date >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND appointment_date <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY appointment_date DESC, slot ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, appointment_date, slot,
			   reason, status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND appointment_date = $2
		AND status = $3
		ORDER BY slot ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, date, model.AppointmentStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}
