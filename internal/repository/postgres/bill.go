package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	query := `
		INSERT INTO bills (
			id, patient_id, appointment_id, amount_cents, description,
			payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	bill.ID = uuid.New()
	bill.CreatedAt = time.Now()
	bill.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.PatientID,
		bill.AppointmentID,
		bill.Amount,
		bill.Description,
		bill.PaymentStatus,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `
		SELECT id, patient_id, appointment_id, amount_cents, description,
			   payment_status, created_at, updated_at
		FROM bills
		WHERE id = $1
	`
	var bill model.Bill
	err := r.db.GetContext(ctx, &bill, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("bill", err)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

func (r *billRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Bill, error) {
	query := `
		SELECT id, patient_id, appointment_id, amount_cents, description,
			   payment_status, created_at, updated_at
		FROM bills
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var bills []*model.Bill
	err := r.db.SelectContext(ctx, &bills, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (r *billRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	query := `
		UPDATE bills
		SET payment_status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("bill", nil)
	}
	return nil
}
