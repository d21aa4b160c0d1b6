package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// BookAppointmentInput carries the fields of a new booking.
type BookAppointmentInput struct {
	PatientName string
	Email       string
	Phone       string
	ServiceName string
	Time        string
	Date        string
	Price       float64
}

// ListAppointmentsInput selects a patient's appointments on one day.
type ListAppointmentsInput struct {
	Requester *domain.Principal
	Email     string
	Date      string
}

// AppointmentService defines booking use cases. Reads and payment updates
// are restricted to the appointment owner or an admin.
type AppointmentService interface {
	Book(ctx context.Context, input BookAppointmentInput) (string, error)
	List(ctx context.Context, input ListAppointmentsInput) ([]*domain.Appointment, error)
	Get(ctx context.Context, requester *domain.Principal, id string) (*domain.Appointment, error)
	// CheckAccess reports whether requester may read or update the
	// appointment, without returning it.
	CheckAccess(ctx context.Context, requester *domain.Principal, id string) error
	RecordPayment(ctx context.Context, requester *domain.Principal, id string, payment domain.Payment) error
}
