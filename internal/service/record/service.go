package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	repo     repository.MedicalRecordRepository
	patients repository.PatientRepository
}

func NewService(repo repository.MedicalRecordRepository, patients repository.PatientRepository) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) AddRecord(ctx context.Context, actor model.Actor, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.NewForbidden("only doctors can add medical records")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid patient ID", err)
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	visitDate, err := time.Parse(model.DateFormat, req.VisitDate)
	if err != nil {
		return nil, apperrors.NewValidation("invalid visit date, expected YYYY-MM-DD", err)
	}

	rec := &model.MedicalRecord{
		PatientID:   patientID,
		DoctorID:    actor.ID,
		Title:       req.Title,
		Description: req.Description,
		VisitDate:   visitDate,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to add medical record: %w", err)
	}
	return rec, nil
}

// ListRecords scopes visibility by role: patients see their own records,
// doctors the ones they authored, admins everything.
func (s *Service) ListRecords(ctx context.Context, actor model.Actor, filters *model.MedicalRecordFilters) ([]*model.MedicalRecord, error) {
	if filters == nil {
		filters = &model.MedicalRecordFilters{}
	}

	switch {
	case actor.IsPatient():
		filters.PatientID = actor.ID
	case actor.IsDoctor():
		filters.DoctorID = actor.ID
	}

	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (s *Service) DeleteRecord(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	// Only the authoring doctor or an admin may remove a record.
	if actor.IsDoctor() && rec.DoctorID != actor.ID {
		return apperrors.NewNotFound("medical record", nil)
	}
	if actor.IsPatient() {
		return apperrors.NewForbidden("patients cannot delete medical records")
	}

	return s.repo.Delete(ctx, id)
}
