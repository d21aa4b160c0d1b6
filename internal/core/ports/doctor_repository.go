package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *domain.Doctor) (string, error)
	List(ctx context.Context) ([]*domain.Doctor, error)
}
