package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDoctorService_Add(t *testing.T) {
	repo := &stubDoctorRepo{}
	svc := NewDoctorService(repo, zerolog.Nop())

	id, err := svc.Add(context.Background(), ports.AddDoctorInput{
		Name:  " Dr. Strange ",
		Email: "strange@clinic.test",
		Image: pngHeader,
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected id")
	}

	doctors, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].Name != "Dr. Strange" {
		t.Fatalf("unexpected doctors: %+v", doctors)
	}
}

func TestDoctorService_Add_RejectsBadImages(t *testing.T) {
	svc := NewDoctorService(&stubDoctorRepo{}, zerolog.Nop())

	cases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello, not an image"),
		"too large": append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxDoctorImageBytes)...),
	}
	for name, img := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), ports.AddDoctorInput{Name: "Dr. X", Email: "x@clinic.test", Image: img})
			if !errors.Is(err, domain.ErrInvalidImage) {
				t.Fatalf("expected ErrInvalidImage, got %v", err)
			}
		})
	}
}
