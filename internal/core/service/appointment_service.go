package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// appointmentDateLayout is the M/D/YYYY form the booking calendar stores.
const appointmentDateLayout = "1/2/2006"

// acceptedDateLayouts are the shapes a client may send a date in.
var acceptedDateLayouts = []string{
	appointmentDateLayout,
	"2006-01-02",
	time.RFC3339,
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
}

type AppointmentService struct {
	repo       ports.AppointmentRepository
	authorizer ports.AdminAuthorizer
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAppointmentService(repo ports.AppointmentRepository, authorizer ports.AdminAuthorizer, logger zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Book stores a new appointment and returns its id.
func (s *AppointmentService) Book(ctx context.Context, input ports.BookAppointmentInput) (string, error) {
	email, err := validEmail(input.Email)
	if err != nil {
		return "", err
	}
	date, err := normalizeDate(input.Date)
	if err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, &domain.Appointment{
		PatientName: strings.TrimSpace(input.PatientName),
		Email:       email,
		Phone:       strings.TrimSpace(input.Phone),
		ServiceName: input.ServiceName,
		Time:        input.Time,
		Date:        date,
		Price:       input.Price,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to book appointment")
		return "", fmt.Errorf("book appointment: %w", err)
	}

	s.logger.Info().Str("appointment_id", id).Str("email", email).Str("date", date).Msg("appointment booked")
	return id, nil
}

// List returns a patient's appointments on a given day. Only the patient or
// an admin may read them.
func (s *AppointmentService) List(ctx context.Context, input ports.ListAppointmentsInput) ([]*domain.Appointment, error) {
	email, err := validEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.AuthorizeOwner(ctx, input.Requester, email); err != nil {
		return nil, err
	}
	date, err := normalizeDate(input.Date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEmailAndDate(ctx, email, date)
}

// Get returns one appointment if the requester owns it or is an admin.
func (s *AppointmentService) Get(ctx context.Context, requester *domain.Principal, id string) (*domain.Appointment, error) {
	return s.findForRequester(ctx, requester, id)
}

func (s *AppointmentService) CheckAccess(ctx context.Context, requester *domain.Principal, id string) error {
	_, err := s.findForRequester(ctx, requester, id)
	return err
}

// RecordPayment attaches payment details to an appointment after checkout.
func (s *AppointmentService) RecordPayment(ctx context.Context, requester *domain.Principal, id string, payment domain.Payment) error {
	if _, err := s.findForRequester(ctx, requester, id); err != nil {
		return err
	}
	if err := s.repo.UpdatePayment(ctx, id, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info().Str("appointment_id", id).Str("transaction", payment.Transaction).Msg("payment recorded")
	return nil
}

// findForRequester loads an appointment for its owner or an admin. Callers
// who may not read it get ErrPermissionDenied whether or not the id exists;
// only admins learn that an id is malformed or unknown.
func (s *AppointmentService) findForRequester(ctx context.Context, requester *domain.Principal, id string) (*domain.Appointment, error) {
	if requester == nil || requester.Email == "" {
		return nil, domain.ErrPermissionDenied
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) || errors.Is(err, domain.ErrInvalidID) {
			if authErr := s.authorizer.Authorize(ctx, requester); authErr != nil {
				return nil, authErr
			}
		}
		return nil, err
	}

	if err := s.authorizer.AuthorizeOwner(ctx, requester, appointment.Email); err != nil {
		return nil, err
	}
	return appointment, nil
}

// normalizeDate converts any accepted date shape to M/D/YYYY.
func normalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(appointmentDateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, raw)
}
