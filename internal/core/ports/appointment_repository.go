package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (string, error)
	// FindByID returns domain.ErrInvalidID for malformed ids and
	// domain.ErrAppointmentNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByEmailAndDate(ctx context.Context, email, date string) ([]*domain.Appointment, error)
	UpdatePayment(ctx context.Context, id string, payment domain.Payment) error
}
