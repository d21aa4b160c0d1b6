package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry intent creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// PaymentHandler handles payment-intent creation for checkout.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type paymentIntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent handles POST /create-payment-intent.
//
// @Summary      Create a card payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Replay key"
// @Param        body             body      paymentIntentRequest  true   "Price in major units"
// @Success      200              {object}  paymentIntentResponse
// @Failure      400              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Failure      422              {object}  messageResponse
// @Router       /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.CreateIntent(c.Request().Context(), ports.PaymentIntentInput{
		Price:          req.Price,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return err
	}

	if res.Replayed {
		metrics.PaymentIntentsTotal.WithLabelValues("replayed").Inc()
	} else {
		metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	}
	return c.JSON(http.StatusOK, paymentIntentResponse{ClientSecret: res.ClientSecret})
}
