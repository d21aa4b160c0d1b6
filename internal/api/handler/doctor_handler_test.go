package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

type stubDoctorService struct {
	addFn func(ctx context.Context, input ports.AddDoctorInput) (string, error)
}

func (s *stubDoctorService) List(context.Context) ([]*domain.Doctor, error) {
	return []*domain.Doctor{{ID: "d-1", Name: "Dr. Who"}}, nil
}

func (s *stubDoctorService) Add(ctx context.Context, input ports.AddDoctorInput) (string, error) {
	return s.addFn(ctx, input)
}

func multipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "doctor.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/doctors", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestDoctorHandler_Add_Success(t *testing.T) {
	image := []byte("\x89PNG\r\n\x1a\nrest-of-image")
	var got ports.AddDoctorInput
	h := NewDoctorHandler(&stubDoctorService{addFn: func(_ context.Context, in ports.AddDoctorInput) (string, error) {
		got = in
		return "d-42", nil
	}})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(multipartRequest(t, map[string]string{"name": "Dr. Who", "email": "who@clinic.test"}, image), rec)

	if err := h.Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Name != "Dr. Who" || got.Email != "who@clinic.test" || !bytes.Equal(got.Image, image) {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestDoctorHandler_Add_MissingImage(t *testing.T) {
	h := NewDoctorHandler(&stubDoctorService{addFn: func(context.Context, ports.AddDoctorInput) (string, error) {
		t.Fatalf("service should not be called")
		return "", nil
	}})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(multipartRequest(t, map[string]string{"name": "Dr. Who"}, nil), rec)

	err := h.Add(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestDoctorHandler_List(t *testing.T) {
	h := NewDoctorHandler(&stubDoctorService{})
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/doctors", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
