package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// AppointmentHandler handles HTTP requests for appointment bookings.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// --- Request / Response types ---

type bookAppointmentRequest struct {
	PatientName string  `json:"patientName" validate:"required,max=200"`
	Email       string  `json:"email"       validate:"required,email"`
	Phone       string  `json:"phone"       validate:"max=40"`
	ServiceName string  `json:"serviceName" validate:"required"`
	Time        string  `json:"time"        validate:"required"`
	Date        string  `json:"date"        validate:"required"`
	Price       float64 `json:"price"       validate:"gte=0"`
}

type bookAppointmentResponse struct {
	InsertedID string `json:"insertedId"`
}

type paymentRequest struct {
	Amount      float64 `json:"amount"      validate:"gte=0"`
	Created     int64   `json:"created"`
	Last4       string  `json:"last4"       validate:"max=4"`
	Transaction string  `json:"transaction" validate:"required"`
}

// List handles GET /appointments?email=&date=.
//
// @Summary      List a patient's appointments for a day
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        email  query     string  true  "Patient email"
// @Param        date   query     string  true  "Day (M/D/YYYY, YYYY-MM-DD or RFC3339)"
// @Success      200    {array}   domain.Appointment
// @Failure      400    {object}  messageResponse
// @Failure      403    {object}  messageResponse
// @Router       /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), ports.ListAppointmentsInput{
		Requester: principal(c),
		Email:     c.QueryParam("email"),
		Date:      c.QueryParam("date"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /appointments/:id.
//
// @Summary      Get one appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  domain.Appointment
// @Failure      400  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	appointment, err := h.service.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appointment)
}

// Book handles POST /appointments.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body      bookAppointmentRequest  true  "Booking"
// @Success      201   {object}  bookAppointmentResponse
// @Failure      400   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /appointments [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	var req bookAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id, err := h.service.Book(c.Request().Context(), ports.BookAppointmentInput{
		PatientName: req.PatientName,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceName: req.ServiceName,
		Time:        req.Time,
		Date:        req.Date,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}

	metrics.AppointmentsBookedTotal.Inc()
	return c.JSON(http.StatusCreated, bookAppointmentResponse{InsertedID: id})
}

// RecordPayment handles PUT /appointments/:id.
//
// @Summary      Record the payment of an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Appointment id"
// @Param        body  body      paymentRequest  true  "Payment details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /appointments/{id} [put]
func (h *AppointmentHandler) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	requester := principal(c)
	id := c.Param("id")

	// Access is decided before the body is judged.
	var req paymentRequest
	bindErr := (&echo.DefaultBinder{}).BindBody(c, &req)
	if err := h.service.CheckAccess(ctx, requester, id); err != nil {
		return err
	}
	if bindErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.service.RecordPayment(ctx, requester, id, domain.Payment{
		Amount:      req.Amount,
		Created:     req.Created,
		Last4:       req.Last4,
		Transaction: req.Transaction,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "payment recorded"})
}
