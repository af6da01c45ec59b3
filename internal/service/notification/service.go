package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

// Service turns appointment lifecycle events into patient-facing emails.
// It runs on the worker side of the outbox: delivery is best-effort and a
// failed email never affects the committed booking.
type Service struct {
	emailSvc email.Service
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	logger   *logger.Logger
}

func NewService(emailSvc email.Service, patients repository.PatientRepository, doctors repository.DoctorRepository, l *logger.Logger) *Service {
	return &Service{
		emailSvc: emailSvc,
		patients: patients,
		doctors:  doctors,
		logger:   l,
	}
}

// HandleAppointmentEvent consumes a broker message for one of the
// appointment.* channels.
func (s *Service) HandleAppointmentEvent(ctx context.Context, eventType string, payload []byte) error {
	var apt model.Appointment
	if err := json.Unmarshal(payload, &apt); err != nil {
		return fmt.Errorf("failed to decode appointment event: %w", err)
	}

	patient, err := s.patients.Get(ctx, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to resolve patient for notification: %w", err)
	}
	doctor, err := s.doctors.Get(ctx, apt.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to resolve doctor for notification: %w", err)
	}

	subject, body := s.compose(eventType, &apt, doctor.Name)
	if subject == "" {
		return nil
	}

	if err := s.emailSvc.Send(ctx, patient.Email, subject, body); err != nil {
		s.logger.Error(err, "failed to send appointment email",
			"appointment_id", apt.ID.String(), "event_type", eventType)
		return err
	}
	return nil
}

func (s *Service) compose(eventType string, apt *model.Appointment, doctorName string) (string, string) {
	date := apt.AppointmentDate.Format(model.DateFormat)

	switch eventType {
	case model.EventAppointmentBooked:
		return "Appointment confirmed",
			fmt.Sprintf("Your appointment with Dr. %s on %s at %s is confirmed.", doctorName, date, apt.Slot)
	case model.EventAppointmentRescheduled:
		return "Appointment rescheduled",
			fmt.Sprintf("Your appointment with Dr. %s has been moved to %s at %s.", doctorName, date, apt.Slot)
	case model.EventAppointmentCancelled:
		return "Appointment cancelled",
			fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been cancelled.", doctorName, date, apt.Slot)
	default:
		return "", ""
	}
}
