package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// MaxDoctorImageBytes caps an uploaded doctor picture.
const MaxDoctorImageBytes = 5 << 20

type DoctorService struct {
	repo   ports.DoctorRepository
	logger zerolog.Logger
}

func NewDoctorService(repo ports.DoctorRepository, logger zerolog.Logger) *DoctorService {
	return &DoctorService{repo: repo, logger: logger}
}

func (s *DoctorService) List(ctx context.Context) ([]*domain.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// Add stores a doctor with its picture. The picture must be a non-empty
// image no larger than MaxDoctorImageBytes.
func (s *DoctorService) Add(ctx context.Context, input ports.AddDoctorInput) (string, error) {
	email, err := validEmail(input.Email)
	if err != nil {
		return "", err
	}
	if len(input.Image) == 0 || len(input.Image) > MaxDoctorImageBytes {
		return "", domain.ErrInvalidImage
	}
	if !strings.HasPrefix(http.DetectContentType(input.Image), "image/") {
		return "", domain.ErrInvalidImage
	}

	id, err := s.repo.Create(ctx, &domain.Doctor{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Image:     input.Image,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("add doctor: %w", err)
	}

	s.logger.Info().Str("doctor_id", id).Str("email", email).Msg("doctor added")
	return id, nil
}
