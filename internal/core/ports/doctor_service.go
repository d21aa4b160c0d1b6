package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// AddDoctorInput carries a new doctor listing and its uploaded picture.
type AddDoctorInput struct {
	Name        string
	Email       string
	Image       []byte
	ContentType string
}

type DoctorService interface {
	List(ctx context.Context) ([]*domain.Doctor, error)
	Add(ctx context.Context, input AddDoctorInput) (string, error)
}
