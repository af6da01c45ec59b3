package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	repo     repository.BillRepository
	patients repository.PatientRepository
}

func NewService(repo repository.BillRepository, patients repository.PatientRepository) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) GenerateBill(ctx context.Context, req *model.GenerateBillRequest) (*model.Bill, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid patient ID", err)
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	bill := &model.Bill{
		PatientID:     patientID,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentStatus: model.PaymentStatusUnpaid,
	}

	if req.AppointmentID != "" {
		aptID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid appointment ID", err)
		}
		bill.AppointmentID = &aptID
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to generate bill: %w", err)
	}
	return bill, nil
}

func (s *Service) ListPatientBills(ctx context.Context, actor model.Actor, patientID uuid.UUID) ([]*model.Bill, error) {
	// Patients only see their own bills.
	if actor.IsPatient() && actor.ID != patientID {
		return nil, apperrors.NewNotFound("patient", nil)
	}

	bills, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return s.repo.UpdatePaymentStatus(ctx, id, status)
}
