package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

type stubAppointmentService struct {
	accessErr error
	recorded  []domain.Payment
}

func (s *stubAppointmentService) Book(context.Context, ports.BookAppointmentInput) (string, error) {
	return "a-1", nil
}

func (s *stubAppointmentService) List(context.Context, ports.ListAppointmentsInput) ([]*domain.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentService) Get(context.Context, *domain.Principal, string) (*domain.Appointment, error) {
	return nil, s.accessErr
}

func (s *stubAppointmentService) CheckAccess(context.Context, *domain.Principal, string) error {
	return s.accessErr
}

func (s *stubAppointmentService) RecordPayment(_ context.Context, _ *domain.Principal, _ string, p domain.Payment) error {
	if s.accessErr != nil {
		return s.accessErr
	}
	s.recorded = append(s.recorded, p)
	return nil
}

func newPaymentContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPut, "/appointments/a-1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a-1")
	return c, rec
}

func TestAppointmentHandler_RecordPayment_DeniedBeforeBodyChecks(t *testing.T) {
	for name, body := range map[string]string{
		"invalid fields": `{"amount":-1,"last4":"123456"}`,
		"malformed json": `{"amount":`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubAppointmentService{accessErr: domain.ErrPermissionDenied}
			h := NewAppointmentHandler(svc)
			c, _ := newPaymentContext(body)

			err := h.RecordPayment(c)
			if !errors.Is(err, domain.ErrPermissionDenied) {
				t.Fatalf("expected ErrPermissionDenied, got %v", err)
			}
			if len(svc.recorded) != 0 {
				t.Fatalf("payment recorded despite denial")
			}
		})
	}
}

func TestAppointmentHandler_RecordPayment_ValidatesAfterAccess(t *testing.T) {
	svc := &stubAppointmentService{}
	h := NewAppointmentHandler(svc)
	c, _ := newPaymentContext(`{"amount":-1}`)

	err := h.RecordPayment(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if len(svc.recorded) != 0 {
		t.Fatalf("invalid payment recorded")
	}
}

func TestAppointmentHandler_RecordPayment_Success(t *testing.T) {
	svc := &stubAppointmentService{}
	h := NewAppointmentHandler(svc)
	c, rec := newPaymentContext(`{"amount":120,"created":1770000000,"last4":"4242","transaction":"pi_123"}`)

	if err := h.RecordPayment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.recorded) != 1 || svc.recorded[0].Transaction != "pi_123" || svc.recorded[0].Last4 != "4242" {
		t.Fatalf("unexpected recorded payments: %+v", svc.recorded)
	}
}
